package message

import "fmt"

// ServerType is the service a server offers
type ServerType uint8

const (
	ServerChat ServerType = iota
	ServerText
	ServerMedia
)

func (s ServerType) String() string {
	switch s {
	case ServerChat:
		return "chat"
	case ServerText:
		return "text"
	case ServerMedia:
		return "media"
	}
	return fmt.Sprintf("server(%d)", uint8(s))
}

// MarshalText encodes the server type by name
func (s ServerType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts chat, text and media
func (s *ServerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "chat":
		*s = ServerChat
	case "text":
		*s = ServerText
	case "media":
		*s = ServerMedia
	default:
		return fmt.Errorf("unknown server type %q", text)
	}
	return nil
}

// Chat operations
const (
	ChatClientList = "client_list"
	ChatRegister   = "register"
	ChatSend       = "send_message"
)

// ChatRequest is sent by a client to a chat server
type ChatRequest struct {
	Op      string `json:"op"`
	From    uint8  `json:"from,omitempty"`
	To      uint8  `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChatResponse answers a ChatRequest, or delivers a message from another client
type ChatResponse struct {
	Op      string  `json:"op"`
	Clients []uint8 `json:"clients,omitempty"`
	From    uint8   `json:"from,omitempty"`
	Message []byte  `json:"message,omitempty"`
}

// Browser operations
const (
	BrowserFileList = "file_list"
	BrowserText     = "text_file"
	BrowserMedia    = "media_file"
)

// BrowserRequest asks a text or media server for its files
type BrowserRequest struct {
	Op   string `json:"op"`
	File uint8  `json:"file,omitempty"`
}

// BrowserResponse carries a file listing or file body
type BrowserResponse struct {
	Op    string  `json:"op"`
	Files []uint8 `json:"files,omitempty"`
	File  uint8   `json:"file,omitempty"`
	Text  string  `json:"text,omitempty"`
	Media []byte  `json:"media,omitempty"`
}

// ServerTypeResponse answers a server type request
type ServerTypeResponse struct {
	Type ServerType `json:"type"`
}
