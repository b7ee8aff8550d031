package workers

import (
	"chat-memory/domain"
	"chat-memory/mocks"
	"chat-memory/observability"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var janitorNow = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)

func newJanitor(t *testing.T, config JanitorConfig) (*Janitor, *mocks.MockIMessageRepository, *mocks.MockISessionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	janitor, err := NewJanitor(messages, sessions, slog.Default(), observability.NewNopMetrics(), config)
	require.NoError(t, err)
	janitor.now = func() time.Time { return janitorNow }
	return janitor, messages, sessions
}

func TestJanitor_Rejects_Invalid_Schedule(t *testing.T) {
	_, err := NewJanitor(nil, nil, slog.Default(), observability.NewNopMetrics(), JanitorConfig{
		RetentionPeriod:   time.Hour,
		RetentionSchedule: "every tuesday",
	})
	require.Error(t, err)
}

func TestJanitor_SweepRetention_Deletes_Before_Cutoff(t *testing.T) {
	req := require.New(t)
	janitor, messages, _ := newJanitor(t, JanitorConfig{RetentionPeriod: 90 * 24 * time.Hour})

	messages.EXPECT().
		DeleteOlderThan(gomock.Any(), janitorNow.Add(-90*24*time.Hour)).
		Return(int64(12), nil)

	deleted, err := janitor.SweepRetention(context.Background())
	req.NoError(err)
	req.Equal(int64(12), deleted)
	req.Equal(float64(1), testutil.ToFloat64(janitor.metrics.JanitorRuns.WithLabelValues(jobRetention, statusOK)))
}

func TestJanitor_SweepRetention_Disabled(t *testing.T) {
	req := require.New(t)
	janitor, _, _ := newJanitor(t, JanitorConfig{})

	deleted, err := janitor.SweepRetention(context.Background())
	req.NoError(err)
	req.Zero(deleted)
}

func TestJanitor_SweepRetention_Reports_Failure(t *testing.T) {
	req := require.New(t)
	janitor, messages, _ := newJanitor(t, JanitorConfig{RetentionPeriod: time.Hour})

	messages.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("database is locked"))

	_, err := janitor.SweepRetention(context.Background())
	req.Error(err)
	req.Equal(float64(1), testutil.ToFloat64(janitor.metrics.JanitorRuns.WithLabelValues(jobRetention, statusFailed)))
}

func TestJanitor_ArchiveIdle_Counts_Only_Archived(t *testing.T) {
	req := require.New(t)
	janitor, _, sessions := newJanitor(t, JanitorConfig{ArchiveIdleAfter: 30 * 24 * time.Hour})
	idleSince := janitorNow.Add(-30 * 24 * time.Hour)

	sessions.EXPECT().ListArchivable(gomock.Any(), idleSince).Return([]domain.Session{
		{ConversationID: "c1"},
		{ConversationID: "c2"},
	}, nil)
	sessions.EXPECT().Archive(gomock.Any(), "c1", idleSince).Return(true, nil)
	// c2 got a new message in between
	sessions.EXPECT().Archive(gomock.Any(), "c2", idleSince).Return(false, nil)

	archived, err := janitor.ArchiveIdle(context.Background())
	req.NoError(err)
	req.Equal(1, archived)
}

func TestJanitor_Run_Returns_On_Cancel(t *testing.T) {
	req := require.New(t)
	janitor, _, _ := newJanitor(t, JanitorConfig{
		RetentionPeriod:   time.Hour,
		RetentionSchedule: "0 3 * * *",
		ArchiveIdleAfter:  time.Hour,
		ArchiveSchedule:   "*/30 * * * *",
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- janitor.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Janitor did not stop")
	}
}
