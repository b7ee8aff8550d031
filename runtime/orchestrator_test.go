package runtime_test

import (
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"chat-memory/runtime"
	"chat-memory/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func Test_Orchestrator_Persists_Every_Message_Before_Stopping(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	metrics := observability.NewNopMetrics()

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = kv.Close() })
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	messages := storage.NewMessageRepository(db, log)
	sessions := storage.NewSessionRepository(db, log)
	orchestrator, err := runtime.NewOrchestrator(
		log, metrics, workers.NewSupervisor(log, 50*time.Millisecond),
		cache.NewMessageCache(kv, log, cache.DefaultTTL, cache.DefaultMaxMessages),
		messages, sessions,
		runtime.Config{
			PersistWorkers:      3,
			PersistQueueSize:    128,
			PersistMaxAttempts:  3,
			PersistRetryBackoff: time.Millisecond,
			PersistTimeout:      time.Second,
		},
	)
	req.NoError(err)
	req.NoError(orchestrator.Start(ctx))
	req.Error(orchestrator.Start(ctx))

	coordinator := orchestrator.Coordinator()
	conversationID, err := coordinator.CreateConversation(ctx, "U1", "")
	req.NoError(err)
	for i := range 20 {
		_, err := coordinator.RecordUserMessage(ctx, conversationID, "U1", fmt.Sprintf("m%d", i))
		req.NoError(err)
	}

	orchestrator.Stop()

	persisted, err := messages.ListByConversation(ctx, conversationID)
	req.NoError(err)
	req.Len(persisted, 20)

	session, err := sessions.FindByConversationID(ctx, conversationID)
	req.NoError(err)
	req.Equal(20, session.MessageCount)
	req.Equal("New conversation", session.Title)
}

func Test_Orchestrator_Rejects_Invalid_Schedule(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelError)
	_, err := runtime.NewOrchestrator(log, observability.NewNopMetrics(), workers.NewSupervisor(log, 0),
		nil, nil, nil,
		runtime.Config{Janitor: workers.JanitorConfig{ArchiveIdleAfter: time.Hour, ArchiveSchedule: "soon"}})
	require.Error(t, err)
}
