package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Demo(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-payload", strings.Repeat("z", 300)}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "11:chat-client")
	assert.Contains(t, out, "3:relay")
	assert.Contains(t, out, "#0 ")
	assert.Contains(t, out, "session ")
	assert.Contains(t, out, "delivered to 12")
}

func TestRun_DropsReroute(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-drops", "1,2,3"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "6:relay")
	assert.NotContains(t, out, "2:relay")
	assert.Contains(t, out, "cost 0 over 4 hops")
}

func TestRun_NoRoute(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-to", "99"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "no route")
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.yaml")
	doc := `
node: {id: 1, kind: chat-client}
topology:
  nodes: [{id: 1, label: chat-client}, {id: 2, label: relay}, {id: 3, label: text-server}]
  edges: [{a: 1, b: 2}, {a: 2, b: 3}]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "-to", "3", "-strategy", "bfs", "-log-level", "debug"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "(bfs)")
	assert.Contains(t, stdout.String(), "delivered to 3")
	assert.Contains(t, stderr.String(), `"msg":"route computed"`)
}

func TestRun_FromNodeZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	doc := `
node: {id: 1, kind: chat-client}
topology:
  nodes:
    - {id: 0, label: chat-client}
    - {id: 1, label: chat-client}
    - {id: 2, label: relay}
    - {id: 3, label: text-server}
  edges: [{a: 0, b: 2}, {a: 2, b: 3}]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "-from", "0", "-to", "3"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "meshroute 0 → 3")
	assert.Contains(t, stdout.String(), "delivered to 3")
}

func TestParseFlags_FromSet(t *testing.T) {
	opts, err := parseFlags([]string{"-from", "0"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.fromSet)

	opts, err = parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, opts.fromSet)
}

func TestRun_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"strategy", []string{"-strategy", "flood"}},
		{"drops", []string{"-drops", "1,x"}},
		{"from range", []string{"-from", "300"}},
		{"unknown source", []string{"-from", "77"}},
		{"missing config", []string{"-config", "/nonexistent/meshroute.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-h"}, &stdout, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, stderr.String(), "-metrics-addr")
}

func TestParseDrops(t *testing.T) {
	ids, err := parseDrops(" 1, 2 ,3")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	ids, err = parseDrops("")
	require.NoError(t, err)
	assert.Nil(t, ids)
}
