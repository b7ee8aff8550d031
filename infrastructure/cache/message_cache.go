//go:generate go run go.uber.org/mock/mockgen -source=message_cache.go -destination=../../mocks/mock_message_cache.go -package=mocks
package cache

import (
	"chat-memory/domain"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	MessagePrefix      = "message:"
	ConversationPrefix = "conversation:"

	DefaultTTL         = 24 * time.Hour
	DefaultMaxMessages = 50

	maxConflictRetries = 5
)

// IMessageCache is the fast tier of the conversation history.
// "Absent" is a regular outcome of Get and Range, not an error.
type IMessageCache interface {
	Put(ctx context.Context, message domain.Message) error
	Get(ctx context.Context, messageID string) (domain.Message, bool, error)
	Range(ctx context.Context, conversationID string, maxCount int) ([]string, error)
	Delete(ctx context.Context, conversationID string) error
	Capacity() int
}

type MessageCache struct {
	db          *badger.DB
	log         *slog.Logger
	ttl         time.Duration
	maxMessages int
}

func NewMessageCache(db *badger.DB, log *slog.Logger, ttl time.Duration, maxMessages int) *MessageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &MessageCache{db: db, log: log, ttl: ttl, maxMessages: maxMessages}
}

// Capacity is the number of identifiers kept per conversation.
func (c *MessageCache) Capacity() int { return c.maxMessages }

// Put stores the message under "message:{id}" and appends its id to
// "conversation:{conversation_id}", trimming the list to the most recent ids.
// Both keys are written in the same transaction with the same TTL so they age out together.
func (c *MessageCache) Put(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value := encodeMessage(message)
	messageKey := messageKey(message.ID)
	conversationKey := conversationKey(message.ConversationID)

	err := c.update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(messageKey, value).WithTTL(c.ttl)); err != nil {
			return err
		}
		ids, err := c.readIDs(txn, conversationKey)
		if err != nil {
			return err
		}
		ids = append(ids, message.ID)
		if len(ids) > c.maxMessages {
			ids = ids[len(ids)-c.maxMessages:]
		}
		return txn.SetEntry(badger.NewEntry(conversationKey, encodeIDs(ids)).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("cache: Put: %w", err)
	}
	return nil
}

// Get returns the cached message, or false when it is absent or expired.
func (c *MessageCache) Get(ctx context.Context, messageID string) (domain.Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, false, err
	}
	var message domain.Message
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(messageID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			message, err = decodeMessage(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("cache: Get: %w", err)
	}
	return message, true, nil
}

// Range returns up to maxCount of the most recent message ids of a conversation, oldest first.
func (c *MessageCache) Range(ctx context.Context, conversationID string, maxCount int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxCount <= 0 {
		return []string{}, nil
	}
	var ids []string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(conversationID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ids, err = decodeIDs(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: Range: %w", err)
	}
	if len(ids) > maxCount {
		ids = ids[len(ids)-maxCount:]
	}
	return ids, nil
}

// Delete drops the conversation list. Message keys are left to expire on their own.
func (c *MessageCache) Delete(ctx context.Context, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.update(func(txn *badger.Txn) error {
		return txn.Delete(conversationKey(conversationID))
	})
	if err != nil {
		return fmt.Errorf("cache: Delete: %w", err)
	}
	return nil
}

// update retries the transaction when badger detects a concurrent write on the same list.
func (c *MessageCache) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = c.db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
		c.log.Debug("Cache transaction conflict, retrying", "attempt", attempt+1)
	}
	return err
}

// readIDs loads the id list of a conversation. A corrupted list is reset rather than
// blocking every future write to the conversation.
func (c *MessageCache) readIDs(txn *badger.Txn, key []byte) ([]string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	ids, err := decodeIDs(raw)
	if err != nil {
		c.log.Warn("Resetting malformed conversation list", "key", string(key), "error", err)
		return nil, nil
	}
	return ids, nil
}

func messageKey(messageID string) []byte {
	return []byte(MessagePrefix + messageID)
}

func conversationKey(conversationID string) []byte {
	return []byte(ConversationPrefix + conversationID)
}
