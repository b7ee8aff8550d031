package main

import (
	"bytes"
	"chat-memory/domain"
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// seed writes one conversation with two turns and returns the SQLite path and the conversation id.
func seed(t *testing.T) (string, string) {
	t.Helper()
	req := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := storage.Open(path)
	req.NoError(err)
	defer db.Close()

	log := logs.GetLoggerFromLevel(slog.LevelError)
	sessions := storage.NewSessionRepository(db, log)
	messages := storage.NewMessageRepository(db, log)

	at := time.Now().Add(-time.Hour)
	session := domain.NewSession("U1", "Trip to Lisbon", at)
	req.NoError(sessions.Create(ctx, session))
	req.NoError(messages.Append(ctx, domain.NewUserMessage(session.ConversationID, "U1", "where to eat?", at)))
	req.NoError(messages.Append(ctx, domain.NewAssistantMessage(session.ConversationID, "U1", "Try the pasteis.", 4, false, at.Add(time.Second))))
	return path, session.ConversationID
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))
	require.NoError(t, root.Execute())
	return out.String()
}

func Test_Stats_And_Conversations(t *testing.T) {
	req := require.New(t)
	path, conversationID := seed(t)

	stats := execute(t, "stats", "U1", "--sqlite", path)
	req.Contains(stats, "U1")
	req.Regexp(`U1\s+2\s+4`, stats)

	conversations := execute(t, "conversations", "U1", "--sqlite", path)
	req.Contains(conversations, conversationID)
	req.Contains(conversations, "Trip to Lisbon")
	req.Contains(conversations, "ACTIVE")
}

func Test_History_And_Messages(t *testing.T) {
	req := require.New(t)
	path, conversationID := seed(t)

	history := execute(t, "history", conversationID, "--sqlite", path, "-n", "1")
	req.Contains(history, "Try the pasteis.")
	req.NotContains(history, "where to eat?")

	messages := execute(t, "messages", "U1", "--sqlite", path)
	req.Contains(messages, "where to eat?")
	req.Contains(messages, "ASSISTANT")
}

func Test_Delete_Then_Sweep_And_Archive(t *testing.T) {
	req := require.New(t)
	path, conversationID := seed(t)

	req.Contains(execute(t, "delete", conversationID, "U2", "--sqlite", path), "Nothing deleted")
	req.Contains(execute(t, "delete", conversationID, "U1", "--sqlite", path), "Deleted "+conversationID)
	req.Contains(execute(t, "conversations", "U1", "--status", "deleted", "--sqlite", path), conversationID)

	req.Contains(execute(t, "archive", "--idle-after", "1m", "--sqlite", path), "Archived 0 conversations")
	req.Contains(execute(t, "sweep", "--older-than", "1m", "--sqlite", path), "Deleted 2 messages")
}

func Test_Cache_Inspect(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	kv, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	messageCache := cache.NewMessageCache(kv, logs.GetLoggerFromLevel(slog.LevelError), cache.DefaultTTL, cache.DefaultMaxMessages)
	req.NoError(messageCache.Put(context.Background(), domain.NewUserMessage("C1", "U1", "cached turn", time.Now())))
	req.NoError(kv.Close())

	out := execute(t, "cache-inspect", "--badger", dir, "--prefix", cache.MessagePrefix)
	req.Contains(out, "cached turn")

	out = execute(t, "cache-inspect", "--badger", dir)
	req.Contains(out, "conversation:C1")
	req.Contains(out, "1 ids")
}
