package node

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-meshroute/pkg/config"
	"github.com/dd0wney/cluso-meshroute/pkg/fragment"
	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/message"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

const twoChains = `
node: {id: 11, kind: chat-client}
topology:
  nodes:
    - {id: 11, label: chat-client}
    - {id: 1, label: relay}
    - {id: 2, label: relay}
    - {id: 3, label: relay}
    - {id: 4, label: relay}
    - {id: 5, label: relay}
    - {id: 6, label: relay}
    - {id: 12, label: chat-server}
  edges:
    - {a: 11, b: 1}
    - {a: 1, b: 2}
    - {a: 2, b: 3}
    - {a: 3, b: 12}
    - {a: 11, b: 4}
    - {a: 4, b: 5}
    - {a: 5, b: 6}
    - {a: 6, b: 12}
`

func newClient(t *testing.T, opts ...Option) *Node {
	t.Helper()
	cfg, err := config.Parse([]byte(twoChains))
	require.NoError(t, err)
	n, err := FromConfig(cfg, opts...)
	require.NoError(t, err)
	return n
}

func TestSendReceive(t *testing.T) {
	client := newClient(t)
	server := New(12, "chat-server", nil)

	text := strings.Repeat("a fairly long chat line ", 20)
	msg, err := message.New(0, 0, message.KindChatRequest,
		message.ChatRequest{Op: message.ChatSend, From: 11, To: 13, Message: text})
	require.NoError(t, err)

	out, err := client.Send(12, msg)
	require.NoError(t, err)
	assert.NotZero(t, out.SessionID)
	assert.Equal(t, out.SessionID, msg.SessionID)
	assert.Equal(t, []topology.NodeID{11, 1, 2, 3, 12}, out.Header.Hops)
	assert.Equal(t, 1, out.Header.HopIndex)
	require.NotEmpty(t, out.Fragments)

	var got *message.Message
	for i, f := range out.Fragments {
		got, err = server.Receive(out.SessionID, f)
		require.NoError(t, err)
		if i < len(out.Fragments)-1 {
			assert.Nil(t, got, "message surfaced before the last fragment")
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, uint8(11), got.SourceID)

	var body message.ChatRequest
	require.NoError(t, got.ContentAs(&body))
	assert.Equal(t, text, body.Message)
	assert.Equal(t, uint64(1), server.AssemblerStats().Completed)
}

func TestSend_NoRoute(t *testing.T) {
	client := newClient(t)
	msg, _ := message.New(0, 0, message.KindServerTypeRequest, nil)

	_, err := client.Send(99, msg)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestSend_NilMessage(t *testing.T) {
	client := newClient(t)

	out, err := client.Send(12, nil)
	assert.ErrorIs(t, err, ErrNilMessage)
	assert.Empty(t, out.Fragments)
}

func TestReportDelivery_Reroutes(t *testing.T) {
	client := newClient(t)
	initial := client.Route(12)
	require.Equal(t, []topology.NodeID{11, 1, 2, 3, 12}, initial)

	for i := 0; i < 3; i++ {
		client.ReportDelivery(initial, false)
	}
	for i := 0; i < 7; i++ {
		client.ReportDelivery(initial, true)
	}

	assert.Equal(t, []topology.NodeID{11, 4, 5, 6, 12}, client.Route(12))
	snap := client.Snapshot()
	assert.Equal(t, uint64(7), snap.History[2].PacketsDropped)
}

func TestTopology(t *testing.T) {
	reg := metrics.NewRegistry()
	client := newClient(t, WithMetrics(reg))

	client.Topology(func(topo *topology.Topology) {
		topo.RemoveEdges(2, 3)
	})
	assert.Equal(t, []topology.NodeID{11, 4, 5, 6, 12}, client.Route(12))

	client.Topology(func(topo *topology.Topology) {
		topo.RemoveNode(5)
	})
	assert.Empty(t, client.Route(12))
}

func TestReceive_Rejected(t *testing.T) {
	server := New(12, "chat-server", nil)
	_, err := server.Receive(1, fragment.Fragment{})
	assert.True(t, fragment.IsRejected(err))
}

func TestReceive_Undecodable(t *testing.T) {
	server := New(12, "chat-server", nil)
	f := fragment.Disassemble([]byte("not an envelope"))[0]
	_, err := server.Receive(5, f)
	assert.ErrorIs(t, err, message.ErrChecksumMismatch)
}

func TestExpireSessions(t *testing.T) {
	server := New(12, "chat-server", nil, WithSessionTTL(time.Millisecond))
	fragments := fragment.Disassemble(make([]byte, 3*fragment.Size))
	_, err := server.Receive(8, fragments[0])
	require.NoError(t, err)

	assert.Equal(t, 1, server.ExpireSessions(time.Now().Add(time.Second)))
	assert.Equal(t, uint64(1), server.AssemblerStats().Expired)
}

func TestNew_TagsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)
	client := newClient(t, WithLogger(logger))

	msg, _ := message.New(0, 0, message.KindChatRequest, message.ChatRequest{Op: message.ChatClientList})
	_, err := client.Send(12, msg)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"node_kind":"chat-client"`)
	assert.Contains(t, out, `"msg":"message queued"`)
}

func TestNew_RegistersSelf(t *testing.T) {
	topo := topology.New()
	n := New(3, "relay", topo)
	assert.Equal(t, topology.NodeID(3), n.ID())
	assert.Equal(t, "relay", n.Kind())
	assert.True(t, topo.HasNode(3))
	assert.Equal(t, topology.RoleRelay, topo.Role(3))
}

func TestConcurrentUse(t *testing.T) {
	client := newClient(t)
	server := New(12, "chat-server", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg, _ := message.New(0, 0, message.KindChatRequest,
				message.ChatRequest{Op: message.ChatSend, Message: strings.Repeat("x", 100*i)})
			out, err := client.Send(12, msg)
			if err != nil {
				t.Errorf("Send: %v", err)
				return
			}
			client.ReportDelivery(out.Header.Traversed(), i%4 == 0)
			for _, f := range out.Fragments {
				if _, err := server.Receive(out.SessionID, f); err != nil {
					t.Errorf("Receive: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(16), server.AssemblerStats().Completed)
}
