// Package message defines the application envelope carried inside a
// fragmented session: who sent it, which session it belongs to, what kind of
// request or response it is, and a JSON body.
package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind names the request or response type carried in Content
type Kind uint8

const (
	KindUnknown Kind = iota
	KindChatRequest
	KindChatResponse
	KindBrowserRequest
	KindBrowserResponse
	KindServerTypeRequest
	KindServerTypeResponse
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindChatRequest:        "chat_request",
	KindChatResponse:       "chat_response",
	KindBrowserRequest:     "browser_request",
	KindBrowserResponse:    "browser_response",
	KindServerTypeRequest:  "server_type_request",
	KindServerTypeResponse: "server_type_response",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown message kind %q", text)
}

// IsRequest reports whether the kind expects a response
func (k Kind) IsRequest() bool {
	return k == KindChatRequest || k == KindBrowserRequest || k == KindServerTypeRequest
}

// Response returns the kind that answers k
func (k Kind) Response() Kind {
	switch k {
	case KindChatRequest:
		return KindChatResponse
	case KindBrowserRequest:
		return KindBrowserResponse
	case KindServerTypeRequest:
		return KindServerTypeResponse
	}
	return KindUnknown
}

// ErrNoContent is returned by ContentAs on a message without a body
var ErrNoContent = errors.New("message has no content")

// Message is the unit an application hands to the disassembler
type Message struct {
	ID        uuid.UUID       `json:"id"`
	SourceID  uint8           `json:"source_id"`
	SessionID uint64          `json:"session_id"`
	Kind      Kind            `json:"kind"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// New builds a message with a fresh id and content encoded as JSON
func New(source uint8, sessionID uint64, kind Kind, content any) (*Message, error) {
	m := &Message{
		ID:        uuid.New(),
		SourceID:  source,
		SessionID: sessionID,
		Kind:      kind,
	}
	if content != nil {
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("encode %s content: %w", kind, err)
		}
		m.Content = raw
	}
	return m, nil
}

// ContentAs decodes Content into v
func (m *Message) ContentAs(v any) error {
	if len(m.Content) == 0 {
		return ErrNoContent
	}
	if err := json.Unmarshal(m.Content, v); err != nil {
		return fmt.Errorf("decode %s content: %w", m.Kind, err)
	}
	return nil
}

// Reply builds the response to m from source, reusing m's session
func (m *Message) Reply(source uint8, content any) (*Message, error) {
	return New(source, m.SessionID, m.Kind.Response(), content)
}
