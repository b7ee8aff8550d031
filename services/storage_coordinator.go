package services

import (
	"chat-memory/contract"
	"chat-memory/domain"
	"chat-memory/errors"
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

const DefaultTitle = "New conversation"

var _ contract.HistoryLoader = (*StorageCoordinator)(nil)

type IStorageCoordinator interface {
	RecordUserMessage(ctx context.Context, conversationID, userID, content string) (string, error)
	RecordAssistantMessage(ctx context.Context, conversationID, userID, content string, tokenUsed int, isStreaming bool, opts ...MessageOption) (string, error)
	LoadHistory(ctx context.Context, conversationID string, maxMessages int) ([]domain.Message, error)
	CreateConversation(ctx context.Context, userID, title string) (string, error)
	ListConversations(ctx context.Context, userID string, page, size int) ([]domain.Session, error)
	DeleteConversation(ctx context.Context, conversationID, userID string) (bool, error)
}

type CoordinatorConfig struct {
	ModelName    string
	DefaultTitle string
}

// MessageOption decorates an assistant message before it is recorded.
type MessageOption func(*domain.Message)

func WithResponseTime(elapsed time.Duration) MessageOption {
	return func(m *domain.Message) {
		ms := elapsed.Milliseconds()
		m.ResponseTimeMs = &ms
	}
}

func WithModelName(name string) MessageOption {
	return func(m *domain.Message) {
		m.ModelName = &name
	}
}

// StorageCoordinator keeps the cache tier and the durable store consistent.
// Writes go to the cache synchronously and to the durable store through the persister.
// Reads are served by the cache and fall back to the durable store.
type StorageCoordinator struct {
	cache     cache.IMessageCache
	messages  storage.IMessageRepository
	sessions  storage.ISessionRepository
	persister contract.MessagePersister
	log       *slog.Logger
	metrics   *observability.Metrics
	config    CoordinatorConfig
	now       func() time.Time
}

func NewStorageCoordinator(
	cache cache.IMessageCache,
	messages storage.IMessageRepository,
	sessions storage.ISessionRepository,
	persister contract.MessagePersister,
	log *slog.Logger,
	metrics *observability.Metrics,
	config CoordinatorConfig) *StorageCoordinator {
	if config.DefaultTitle == "" {
		config.DefaultTitle = DefaultTitle
	}
	return &StorageCoordinator{
		cache:     cache,
		messages:  messages,
		sessions:  sessions,
		persister: persister,
		log:       log,
		metrics:   metrics,
		config:    config,
		now:       time.Now,
	}
}

func (c *StorageCoordinator) RecordUserMessage(ctx context.Context, conversationID, userID, content string) (string, error) {
	if err := validateRequest(recordRequest{ConversationID: conversationID, UserID: userID}); err != nil {
		return "", err
	}
	message := domain.NewUserMessage(conversationID, userID, content, c.now())
	c.record(ctx, message)
	return message.ID, nil
}

func (c *StorageCoordinator) RecordAssistantMessage(
	ctx context.Context,
	conversationID, userID, content string,
	tokenUsed int,
	isStreaming bool,
	opts ...MessageOption) (string, error) {
	if err := validateRequest(recordRequest{ConversationID: conversationID, UserID: userID, TokenUsed: tokenUsed}); err != nil {
		return "", err
	}
	message := domain.NewAssistantMessage(conversationID, userID, content, tokenUsed, isStreaming, c.now())
	if c.config.ModelName != "" {
		WithModelName(c.config.ModelName)(&message)
	}
	for _, opt := range opts {
		opt(&message)
	}
	c.record(ctx, message)
	return message.ID, nil
}

// record never fails: the chat turn goes on whatever happens to its history.
func (c *StorageCoordinator) record(ctx context.Context, message domain.Message) {
	if err := c.cache.Put(ctx, message); err != nil {
		c.log.Warn("Cache write failed",
			"conversation_id", message.ConversationID,
			"message_id", message.ID,
			"error", err)
	}
	if err := c.persister.Enqueue(message); err != nil {
		c.log.Error("Durable write not scheduled",
			"conversation_id", message.ConversationID,
			"message_id", message.ID,
			"error", err)
	}
	if err := c.sessions.BumpActivity(ctx, message.ConversationID, message.CreatedAt, message.Tokens()); err != nil {
		c.log.Warn("Session activity not updated",
			"conversation_id", message.ConversationID,
			"error", err)
	}
}

// LoadHistory returns the last maxMessages messages of the conversation, oldest first.
// Cache failures and partially expired entries are repaired from the durable store.
func (c *StorageCoordinator) LoadHistory(ctx context.Context, conversationID string, maxMessages int) ([]domain.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: empty conversation id", errors.ErrInvalidInput)
	}
	if maxMessages <= 0 {
		return []domain.Message{}, nil
	}

	ids, err := c.cache.Range(ctx, conversationID, maxMessages)
	if err != nil {
		c.log.Warn("Cache range failed, reading durable store", "conversation_id", conversationID, "error", err)
		c.metrics.CacheLookups.WithLabelValues(observability.CacheError).Inc()
		return c.fromDurable(ctx, conversationID, maxMessages, nil, observability.SourceDurable), nil
	}
	if len(ids) == 0 {
		return c.fromDurable(ctx, conversationID, maxMessages, nil, observability.SourceDurable), nil
	}

	cached := make([]domain.Message, 0, len(ids))
	complete := true
	for _, id := range ids {
		message, found, err := c.cache.Get(ctx, id)
		switch {
		case err != nil:
			c.log.Warn("Cache read failed", "conversation_id", conversationID, "message_id", id, "error", err)
			c.metrics.CacheLookups.WithLabelValues(observability.CacheError).Inc()
			complete = false
		case !found:
			c.metrics.CacheLookups.WithLabelValues(observability.CacheMiss).Inc()
			complete = false
		default:
			c.metrics.CacheLookups.WithLabelValues(observability.CacheHit).Inc()
			cached = append(cached, message)
		}
	}
	if complete && len(ids) < maxMessages {
		complete = c.coversHistory(ctx, conversationID, len(ids))
	}
	if complete {
		c.metrics.HistoryLoads.WithLabelValues(observability.SourceCache).Inc()
		return cached, nil
	}
	return c.fromDurable(ctx, conversationID, maxMessages, cached, observability.SourceMerged), nil
}

// coversHistory reports whether n cached ids are the whole conversation.
// A full window or a list recreated after expiry can hide older messages.
func (c *StorageCoordinator) coversHistory(ctx context.Context, conversationID string, n int) bool {
	if n >= c.cache.Capacity() {
		return false
	}
	session, err := c.sessions.FindByConversationID(ctx, conversationID)
	if err != nil {
		c.log.Debug("Session count unavailable, reading durable store", "conversation_id", conversationID, "error", err)
		return false
	}
	return session.MessageCount <= n
}

// fromDurable merges the durable history with what the cache still had.
// When the durable store is unreachable the cached part is all the caller gets.
func (c *StorageCoordinator) fromDurable(
	ctx context.Context,
	conversationID string,
	maxMessages int,
	cached []domain.Message,
	source string) []domain.Message {
	durable, err := c.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		c.log.Error("Durable history unavailable", "conversation_id", conversationID, "error", err)
		if cached == nil {
			return []domain.Message{}
		}
		return tail(cached, maxMessages)
	}
	c.metrics.HistoryLoads.WithLabelValues(source).Inc()

	if len(cached) == 0 {
		return tail(durable, maxMessages)
	}
	merged := lo.UniqBy(append(durable, cached...), func(m domain.Message) string { return m.ID })
	slices.SortStableFunc(merged, func(a, b domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return tail(merged, maxMessages)
}

func tail(messages []domain.Message, n int) []domain.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func (c *StorageCoordinator) CreateConversation(ctx context.Context, userID, title string) (string, error) {
	if err := validateRequest(conversationRequest{UserID: userID, Title: title}); err != nil {
		return "", err
	}
	if strings.TrimSpace(title) == "" {
		title = c.config.DefaultTitle
	}
	session := domain.NewSession(userID, title, c.now())
	if err := c.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	c.log.Debug("Conversation created", "conversation_id", session.ConversationID, "user_id", userID)
	return session.ConversationID, nil
}

// ListConversations returns the user's ACTIVE conversations, most recently active first.
func (c *StorageCoordinator) ListConversations(ctx context.Context, userID string, page, size int) ([]domain.Session, error) {
	if err := validateRequest(conversationRequest{UserID: userID}); err != nil {
		return nil, err
	}
	sessions, err := c.sessions.ListByUser(ctx, userID, domain.SessionActive, page, size)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return sessions, nil
}

// DeleteConversation soft deletes the conversation when userID owns it.
// The cache is cleared on a best effort basis, the durable status is authoritative.
func (c *StorageCoordinator) DeleteConversation(ctx context.Context, conversationID, userID string) (bool, error) {
	if err := validateRequest(ownerRequest{ConversationID: conversationID, UserID: userID}); err != nil {
		return false, err
	}
	deleted, err := c.sessions.SoftDelete(ctx, conversationID, userID)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	if !deleted {
		return false, nil
	}
	if err := c.cache.Delete(ctx, conversationID); err != nil {
		c.log.Warn("Cache not cleared after delete", "conversation_id", conversationID, "error", err)
	}
	return true, nil
}
