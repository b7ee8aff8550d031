package internal

import (
	"chat-memory/domain"
	"chat-memory/infrastructure/cache"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func Test_CacheRowMapper_Decodes_Cache_Entries(t *testing.T) {
	req := require.New(t)
	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = kv.Close() })

	messageCache := cache.NewMessageCache(kv, logs.GetLoggerFromLevel(slog.LevelError), cache.DefaultTTL, cache.DefaultMaxMessages)
	message := domain.NewUserMessage("C1", "U1", "inspect me", time.Now())
	req.NoError(messageCache.Put(context.Background(), message))

	raw := make(map[string][]byte)
	req.NoError(kv.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			raw[string(it.Item().KeyCopy(nil))] = val
		}
		return nil
	}))

	messageRow := CacheRowMapper(cache.MessagePrefix+message.ID, raw[cache.MessagePrefix+message.ID])
	req.Equal("MESSAGE", messageRow.Type)
	req.Equal("C1", messageRow.Namespace)
	req.Equal(message.ID, messageRow.EntityID)
	req.Equal("USER: inspect me", messageRow.Detail)

	conversationRow := CacheRowMapper(cache.ConversationPrefix+"C1", raw[cache.ConversationPrefix+"C1"])
	req.Equal("CONVERSATION", conversationRow.Type)
	req.Equal("C1", conversationRow.Namespace)
	req.Equal(message.ID, conversationRow.EntityID)
	req.Equal("1 ids", conversationRow.Detail)
}

func Test_CacheRowMapper_Flags_Corrupt_And_Foreign_Keys(t *testing.T) {
	req := require.New(t)

	corrupt := CacheRowMapper(cache.MessagePrefix+"M1", []byte{0x0a, 0x05, 'h'})
	req.Equal("CORRUPT", corrupt.Type)
	req.Contains(corrupt.Detail, "Error:")

	foreign := CacheRowMapper("other:key", []byte("abcd"))
	req.Equal("RAW", foreign.Type)
	req.Equal("Size: 4 bytes", foreign.Detail)
}
