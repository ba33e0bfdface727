package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO calendar date used as the session sort key.
const DateLayout = "2006-01-02"

// SessionKey identifies one caller's conversation on one calendar day.
type SessionKey struct {
	CallerID string `json:"caller_id"`
	Date     string `json:"date"`
}

// KeyFor builds the session key for callerID on the calendar day of now in loc.
func KeyFor(callerID string, now time.Time, loc *time.Location) SessionKey {
	return SessionKey{CallerID: callerID, Date: now.In(loc).Format(DateLayout)}
}

// Session is the durable per-caller-per-day conversation record.
type Session struct {
	CallerID   string    `json:"caller_id"`
	Date       string    `json:"date"`
	InputMode  InputMode `json:"input_mode"`
	Counter    int       `json:"counter"`
	BlankCount int       `json:"blank_count"`
	Turns      []Turn    `json:"turns"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession starts an empty session for key.
func NewSession(key SessionKey, mode InputMode, now time.Time) *Session {
	return &Session{
		CallerID:  key.CallerID,
		Date:      key.Date,
		InputMode: mode,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the session's store key.
func (s *Session) Key() SessionKey {
	return SessionKey{CallerID: s.CallerID, Date: s.Date}
}

// Turn is one role-tagged entry in a session's history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// ToolCall is set on assistant turns that request a tool.
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	// ToolCallID and Name are set on tool turns.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCall is a structured request from the model backend.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// AddUser appends a user turn.
func (s *Session) AddUser(content string) {
	s.Turns = append(s.Turns, Turn{Role: RoleUser, Content: content})
}

// AddAssistant appends an assistant turn with an optional tool call.
func (s *Session) AddAssistant(content string, call *ToolCall) {
	s.Turns = append(s.Turns, Turn{Role: RoleAssistant, Content: content, ToolCall: call})
}

// AddToolResult appends the result of call.
func (s *Session) AddToolResult(call *ToolCall, content string) {
	s.Turns = append(s.Turns, Turn{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
	})
}

// Attributes is the string-keyed bag the front-end carries across turns.
type Attributes map[string]string

// Clone returns an independent copy of a. A nil bag clones to an empty one.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a)+2)
	for k, v := range a {
		out[k] = v
	}
	return out
}
