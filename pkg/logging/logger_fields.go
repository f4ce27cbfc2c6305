package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Mesh-specific helpers

func Component(name string) Field {
	return String("component", name)
}

func NodeID(id uint8) Field {
	return Field{Key: "node_id", Value: id}
}

func NodeKind(kind string) Field {
	return String("node_kind", kind)
}

func Peer(id uint8) Field {
	return Field{Key: "peer", Value: id}
}

func Session(id uint64) Field {
	return Uint64("session_id", id)
}

// Hops records a route as a list of plain integers so it renders as a JSON
// array instead of the base64 string encoding/json uses for []uint8.
func Hops[T ~uint8](hops []T) Field {
	out := make([]int, len(hops))
	for i, h := range hops {
		out[i] = int(h)
	}
	return Field{Key: "hops", Value: out}
}

func Strategy(name string) Field {
	return String("strategy", name)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
