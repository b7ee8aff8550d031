package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Session_Status_Transitions(t *testing.T) {
	req := require.New(t)

	req.True(SessionActive.CanTransitionTo(SessionArchived))
	req.True(SessionActive.CanTransitionTo(SessionDeleted))
	req.False(SessionActive.CanTransitionTo(SessionActive))
	req.False(SessionArchived.CanTransitionTo(SessionActive))
	req.False(SessionArchived.CanTransitionTo(SessionDeleted))
	req.False(SessionDeleted.CanTransitionTo(SessionActive))
	req.False(SessionDeleted.CanTransitionTo(SessionArchived))
}

func Test_Transition_Sources(t *testing.T) {
	req := require.New(t)

	req.Equal([]SessionStatus{SessionActive}, TransitionSources(SessionArchived))
	req.Equal([]SessionStatus{SessionActive}, TransitionSources(SessionDeleted))
	req.Empty(TransitionSources(SessionActive))
}

func Test_NewSession_Starts_Active_With_Zero_Counters(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	session := NewSession("U1", "title", at)

	req.NotEmpty(session.ConversationID)
	req.Equal(SessionActive, session.Status)
	req.Zero(session.MessageCount)
	req.Zero(session.TotalTokens)
	req.Equal(time.UTC, session.LastActiveAt.Location())
	req.True(session.LastActiveAt.Equal(at))
}

func Test_Message_Equal_Dereferences_Optional_Fields(t *testing.T) {
	req := require.New(t)
	at := time.Now()

	a := NewAssistantMessage("C1", "U1", "hello", 5, false, at)
	b := a
	tokens := 5
	b.TokenUsed = &tokens
	req.True(a.Equal(b))

	b.ModelName = new(string)
	req.False(a.Equal(b))

	u := NewUserMessage("C1", "U1", "hi", at)
	req.Zero(u.Tokens())
	req.Equal(RoleUser, u.Role)
	req.NotEqual(a.ID, u.ID)
}
