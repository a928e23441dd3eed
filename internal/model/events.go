package model

import "encoding/json"

// Websocket event names.
const (
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventUsers          = "users"
	EventPrivateMessage = "private_message"
	EventError          = "error"
	EventSuperseded     = "superseded"
)

// Frame is the websocket wire unit.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the inbound send_message body.
type SendMessagePayload struct {
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	CipherText string `json:"cipherText"`
	IV         string `json:"iv"`
}

// PrivateMessagePayload is pushed to a recipient that is online.
type PrivateMessagePayload struct {
	From      string `json:"from"`
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
}

// TypingPayload is the inbound typing body.
type TypingPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	IsTyping Flag   `json:"isTyping"`
}

// TypingNotice is the outbound typing body.
type TypingNotice struct {
	From     string `json:"from"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorPayload reports a frame the server could not process.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Flag is a bool that accepts any JSON value using JavaScript truthiness,
// the way browser clients send isTyping.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		*f = x != ""
	default:
		*f = true
	}
	return nil
}
