package chat

import (
	"bytes"
	"encoding/json"
	"time"
)

// Message is one stored turn as returned by the backend history endpoint.
type Message struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// SessionSummary describes a conversation by its most recent message.
type SessionSummary struct {
	SessionID   string
	LastMessage string
	Timestamp   time.Time
}

// Transcript is a single session's messages plus its custom system prompt.
type Transcript struct {
	SessionID    string
	Messages     []Message
	SystemPrompt string
}

// SendRequest is one user turn. KBID optionally grounds the reply in an
// uploaded knowledge base.
type SendRequest struct {
	SessionID string
	Message   string
	KBID      string
}

// KnowledgeBase is an uploaded PDF the backend can retrieve context from.
type KnowledgeBase struct {
	ID        string `json:"kb_id"`
	Filename  string `json:"filename"`
	Chunks    int    `json:"chunks"`
	CreatedAt string `json:"created_at"`
}

type KBUpload struct {
	ID     string `json:"kb_id"`
	Chunks int    `json:"chunks"`
}

// Reply is the backend answer to a sent message.
type Reply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// The backend serializes naive UTC datetimes without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts RFC 3339 and offset-less ISO 8601 values. Values that
// cannot be parsed decode to the zero time and keep the raw text.
type Timestamp struct {
	time.Time
	Raw string
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func ParseTimestamp(s string) Timestamp {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: ts, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}
