// Package domain contains core concepts of the conversation history system.
// This file defines the Message record: one chat turn, immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents an immutable chat turn.
// Optional attributes are pointers so that "absent" survives a round trip
// through the cache and the durable store.
type Message struct {
	ID             string
	ConversationID string
	UserID         string
	Role           Role
	Content        string
	CreatedAt      time.Time
	TokenUsed      *int
	ResponseTimeMs *int64
	IsStreaming    *bool
	ModelName      *string
}

// NewUserMessage builds a USER turn with a fresh identifier.
func NewUserMessage(conversationID, userID, content string, at time.Time) Message {
	streaming := false
	return Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      at.UTC(),
		IsStreaming:    &streaming,
	}
}

// NewAssistantMessage builds an ASSISTANT turn with a fresh identifier.
func NewAssistantMessage(conversationID, userID, content string, tokenUsed int, isStreaming bool, at time.Time) Message {
	return Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           RoleAssistant,
		Content:        content,
		CreatedAt:      at.UTC(),
		TokenUsed:      &tokenUsed,
		IsStreaming:    &isStreaming,
	}
}

// Tokens returns the token cost of the message, zero when unknown.
func (m Message) Tokens() int {
	if m.TokenUsed == nil {
		return 0
	}
	return *m.TokenUsed
}

// Equal compares two messages field by field, dereferencing optional attributes.
func (m Message) Equal(o Message) bool {
	return m.ID == o.ID &&
		m.ConversationID == o.ConversationID &&
		m.UserID == o.UserID &&
		m.Role == o.Role &&
		m.Content == o.Content &&
		m.CreatedAt.Equal(o.CreatedAt) &&
		equalPtr(m.TokenUsed, o.TokenUsed) &&
		equalPtr(m.ResponseTimeMs, o.ResponseTimeMs) &&
		equalPtr(m.IsStreaming, o.IsStreaming) &&
		equalPtr(m.ModelName, o.ModelName)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
