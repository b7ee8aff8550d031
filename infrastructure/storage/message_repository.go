//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"chat-memory/domain"
	apperrors "chat-memory/errors"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// IMessageRepository is the append-only durable history.
type IMessageRepository interface {
	Append(ctx context.Context, message domain.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	ListByUser(ctx context.Context, userID string, page, size int) ([]domain.Message, error)
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Message, error)
	SumTokensByUser(ctx context.Context, userID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type MessageRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewMessageRepository(db *sql.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

const messageColumns = `message_id, conversation_id, user_id, role, content,
	token_used, response_time_ms, model_name, is_streaming, created_at`

// Append inserts the message once. Appending an already stored message id is a no-op,
// which makes retries of the asynchronous write safe.
func (r *MessageRepository) Append(ctx context.Context, message domain.Message) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING
	`,
		message.ID,
		message.ConversationID,
		message.UserID,
		string(message.Role),
		message.Content,
		nullableInt(message.TokenUsed),
		nullableInt64(message.ResponseTimeMs),
		nullableString(message.ModelName),
		nullableBool(message.IsStreaming),
		message.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: Append: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		r.log.Debug("Message already stored", "message_id", message.ID)
	}
	return nil
}

// ListByConversation returns every message of a conversation, oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByConversation: %w", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByConversation: %w", err)
	}
	return messages, nil
}

// ListByUser pages through the messages of a user, newest first. Pages start at zero.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string, page, size int) ([]domain.Message, error) {
	if page < 0 || size <= 0 {
		return nil, apperrors.ErrInvalidPage
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUser: %w", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUser: %w", err)
	}
	return messages, nil
}

// ListByUserBetween returns the messages of a user created within [from, to], newest first.
func (r *MessageRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE user_id = ? AND created_at BETWEEN ? AND ?
		ORDER BY created_at DESC, id DESC
	`, userID, from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUserBetween: %w", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUserBetween: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) SumTokensByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(token_used), 0) FROM messages WHERE user_id = ?
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("storage: SumTokensByUser: %w", err)
	}
	return total, nil
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE user_id = ?
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("storage: CountByUser: %w", err)
	}
	return count, nil
}

// DeleteOlderThan purges messages created strictly before the given time.
func (r *MessageRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE created_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("storage: DeleteOlderThan: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: DeleteOlderThan: %w", err)
	}
	return deleted, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer rows.Close()
	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m            domain.Message
			role         string
			tokenUsed    sql.NullInt64
			responseTime sql.NullInt64
			modelName    sql.NullString
			isStreaming  sql.NullBool
			createdAt    int64
		)
		err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &role, &m.Content,
			&tokenUsed, &responseTime, &modelName, &isStreaming, &createdAt)
		if err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		m.CreatedAt = time.Unix(0, createdAt).UTC()
		if tokenUsed.Valid {
			tokens := int(tokenUsed.Int64)
			m.TokenUsed = &tokens
		}
		if responseTime.Valid {
			m.ResponseTimeMs = &responseTime.Int64
		}
		if modelName.Valid {
			m.ModelName = &modelName.String
		}
		if isStreaming.Valid {
			m.IsStreaming = &isStreaming.Bool
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullableBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
