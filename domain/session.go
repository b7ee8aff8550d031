package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionArchived SessionStatus = "ARCHIVED"
	SessionDeleted  SessionStatus = "DELETED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionArchived, SessionDeleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a session may move from s to next.
// Only ACTIVE sessions move, and never back to ACTIVE.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	return s == SessionActive && (next == SessionArchived || next == SessionDeleted)
}

// TransitionSources lists the statuses a session may leave to reach next.
func TransitionSources(next SessionStatus) []SessionStatus {
	var sources []SessionStatus
	for _, s := range []SessionStatus{SessionActive, SessionArchived, SessionDeleted} {
		if s.CanTransitionTo(next) {
			sources = append(sources, s)
		}
	}
	return sources
}

// Session aggregates the metadata of one conversation.
// MessageCount and TotalTokens only grow while the session is ACTIVE.
type Session struct {
	ConversationID string
	UserID         string
	Title          string
	Status         SessionStatus
	MessageCount   int
	TotalTokens    int
	LastActiveAt   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession opens a fresh ACTIVE conversation with zero counters.
func NewSession(userID, title string, at time.Time) Session {
	at = at.UTC()
	return Session{
		ConversationID: uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Status:         SessionActive,
		LastActiveAt:   at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}
