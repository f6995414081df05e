// Package model defines the conversation data model owned by the session
// actor: messages, tool calls and the tagged tool-result union.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of a conversation. Immutable once appended; ordering is
// append order.
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// NewMessage builds a message with a fresh id and current timestamp.
func NewMessage(role Role, content string, toolCalls []ToolCall) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		ToolCalls: toolCalls,
	}
}

// ToolCall is one executed tool invocation attached to an assistant message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    ToolResult     `json:"result"`
}

// ChatState is the full observable state of one conversation session.
type ChatState struct {
	SessionID        string    `json:"sessionId"`
	Messages         []Message `json:"messages"`
	IsProcessing     bool      `json:"isProcessing"`
	Model            string    `json:"model"`
	StreamingMessage string    `json:"streamingMessage,omitempty"`
}

// Weather is the payload of a get_weather result. Values are simulated.
type Weather struct {
	Location    string `json:"location"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
}

// Clone returns a deep copy of the state so callers can hand it out without
// exposing the actor's mutable slices.
func (s ChatState) Clone() ChatState {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
