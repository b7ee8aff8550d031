package cache

import (
	"chat-memory/domain"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newCache(t *testing.T) (*MessageCache, *badger.DB) {
	db := openBadger(t)
	return NewMessageCache(db, logs.GetLoggerFromLevel(slog.LevelDebug), DefaultTTL, DefaultMaxMessages), db
}

func Test_Put_Then_Get_And_Range(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	cache, _ := newCache(t)
	at := time.Now()
	first := domain.NewUserMessage("C1", "U1", "hi", at)
	second := domain.NewAssistantMessage("C1", "U1", "hello", 5, false, at.Add(time.Second))

	req.NoError(cache.Put(ctx, first))
	req.NoError(cache.Put(ctx, second))

	fetched, ok, err := cache.Get(ctx, second.ID)
	req.NoError(err)
	req.True(ok)
	req.Equal(second, fetched)

	ids, err := cache.Range(ctx, "C1", 10)
	req.NoError(err)
	req.Equal([]string{first.ID, second.ID}, ids)

	ids, err = cache.Range(ctx, "C1", 1)
	req.NoError(err)
	req.Equal([]string{second.ID}, ids)
}

func Test_Get_Unknown_Message_Is_Absent(t *testing.T) {
	req := require.New(t)
	cache, _ := newCache(t)

	_, ok, err := cache.Get(context.Background(), "missing")

	req.NoError(err)
	req.False(ok)
}

func Test_Range_Unknown_Conversation_Is_Empty(t *testing.T) {
	req := require.New(t)
	cache, _ := newCache(t)

	ids, err := cache.Range(context.Background(), "nope", 10)

	req.NoError(err)
	req.Empty(ids)
}

func Test_Sixty_Messages_Keep_Last_Fifty_Oldest_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	cache, _ := newCache(t)
	at := time.Now()

	var written []string
	for i := 0; i < 60; i++ {
		message := domain.NewUserMessage("C1", "U1", fmt.Sprintf("message %d", i), at.Add(time.Duration(i)*time.Millisecond))
		req.NoError(cache.Put(ctx, message))
		written = append(written, message.ID)
	}

	ids, err := cache.Range(ctx, "C1", 100)

	req.NoError(err)
	req.Len(ids, DefaultMaxMessages)
	req.Equal(written[10:], ids)
}

func Test_Concurrent_Puts_Never_Exceed_Capacity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openBadger(t)
	cache := NewMessageCache(db, slog.Default(), DefaultTTL, 5)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cache.Put(ctx, domain.NewUserMessage("C1", "U1", fmt.Sprint(i), time.Now()))
		}(i)
	}
	wg.Wait()

	ids, err := cache.Range(ctx, "C1", 100)
	req.NoError(err)
	req.LessOrEqual(len(ids), 5)
	req.NotEmpty(ids)
}

func Test_Put_Sets_The_Same_TTL_On_Message_And_List(t *testing.T) {
	req := require.New(t)
	cache, db := newCache(t)
	message := domain.NewUserMessage("C1", "U1", "hi", time.Now())
	lowerBound := uint64(time.Now().Add(DefaultTTL).Unix()) - 1

	req.NoError(cache.Put(context.Background(), message))

	err := db.View(func(txn *badger.Txn) error {
		for _, key := range [][]byte{messageKey(message.ID), conversationKey("C1")} {
			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			req.GreaterOrEqual(item.ExpiresAt(), lowerBound)
			req.LessOrEqual(item.ExpiresAt(), lowerBound+5)
		}
		return nil
	})
	req.NoError(err)
}

func Test_Partially_Expired_List_Reports_Miss_For_The_Expired_Id(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	cache, db := newCache(t)
	first := domain.NewUserMessage("C1", "U1", "hi", time.Now())
	second := domain.NewUserMessage("C1", "U1", "again", time.Now())
	req.NoError(cache.Put(ctx, first))
	req.NoError(cache.Put(ctx, second))

	// Given the first item aged out while its id is still listed
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Delete(messageKey(first.ID))
	}))

	ids, err := cache.Range(ctx, "C1", 10)
	req.NoError(err)
	req.Equal([]string{first.ID, second.ID}, ids)

	_, ok, err := cache.Get(ctx, first.ID)
	req.NoError(err)
	req.False(ok)
}

func Test_Delete_Removes_List_But_Not_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	cache, _ := newCache(t)
	message := domain.NewUserMessage("C1", "U1", "hi", time.Now())
	req.NoError(cache.Put(ctx, message))

	req.NoError(cache.Delete(ctx, "C1"))
	req.NoError(cache.Delete(ctx, "never-existed"))

	ids, err := cache.Range(ctx, "C1", 10)
	req.NoError(err)
	req.Empty(ids)
	_, ok, err := cache.Get(ctx, message.ID)
	req.NoError(err)
	req.True(ok)
}

func Test_Canceled_Context_Fails_Fast(t *testing.T) {
	req := require.New(t)
	cache, _ := newCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Range(ctx, "C1", 10)

	req.ErrorIs(err, context.Canceled)
}

func Test_Inspect_Decodes_Both_Key_Kinds(t *testing.T) {
	req := require.New(t)
	cache, db := newCache(t)
	message := domain.NewUserMessage("C1", "U1", "hi", time.Now())
	req.NoError(cache.Put(context.Background(), message))

	rows, err := Inspect(db, "", 0)

	req.NoError(err)
	req.Len(rows, 2)
	for _, row := range rows {
		req.NoError(row.Err)
		req.False(row.ExpiresAt.IsZero())
		switch row.Key {
		case ConversationPrefix + "C1":
			req.Equal([]string{message.ID}, row.IDs)
		case MessagePrefix + message.ID:
			req.NotNil(row.Message)
			req.Equal("hi", row.Message.Content)
		default:
			req.Failf("unexpected key", "%s", row.Key)
		}
	}
}
