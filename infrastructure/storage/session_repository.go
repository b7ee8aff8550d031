//go:generate go run go.uber.org/mock/mockgen -source=session_repository.go -destination=../../mocks/mock_session_repository.go -package=mocks
package storage

import (
	"chat-memory/domain"
	apperrors "chat-memory/errors"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ISessionRepository holds the per-conversation aggregate.
type ISessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	FindByConversationID(ctx context.Context, conversationID string) (domain.Session, error)
	ListByUser(ctx context.Context, userID string, status domain.SessionStatus, page, size int) ([]domain.Session, error)
	BumpActivity(ctx context.Context, conversationID string, at time.Time, tokenDelta int) error
	SoftDelete(ctx context.Context, conversationID, userID string) (bool, error)
	ListArchivable(ctx context.Context, idleSince time.Time) ([]domain.Session, error)
	Archive(ctx context.Context, conversationID string, idleSince time.Time) (bool, error)
}

type SessionRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewSessionRepository(db *sql.DB, log *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, log: log, now: time.Now}
}

const sessionColumns = `conversation_id, user_id, title, status, message_count, total_tokens,
	last_active_at, created_at, updated_at`

func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ConversationID,
		session.UserID,
		session.Title,
		string(session.Status),
		session.MessageCount,
		session.TotalTokens,
		session.LastActiveAt.UnixNano(),
		session.CreatedAt.UnixNano(),
		session.UpdatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("storage: Create %s: %w", session.ConversationID, apperrors.ErrSessionAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("storage: Create: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByConversationID(ctx context.Context, conversationID string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE conversation_id = ?
	`, conversationID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("storage: FindByConversationID: %w", err)
	}
	return session, nil
}

// ListByUser pages through the sessions of a user with the given status,
// most recently active first. Pages start at zero.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, status domain.SessionStatus, page, size int) ([]domain.Session, error) {
	if page < 0 || size <= 0 {
		return nil, apperrors.ErrInvalidPage
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = ? AND status = ?
		ORDER BY last_active_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, string(status), size, page*size)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUser: %w", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByUser: %w", err)
	}
	return sessions, nil
}

// BumpActivity counts one more message and adds tokenDelta in a single UPDATE statement,
// so concurrent bumps on the same conversation never lose an increment.
// The last-active time never moves backwards.
func (r *SessionRepository) BumpActivity(ctx context.Context, conversationID string, at time.Time, tokenDelta int) error {
	if tokenDelta < 0 {
		return apperrors.ErrNegativeTokenDelta
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET message_count  = message_count + 1,
		    total_tokens   = total_tokens + ?,
		    last_active_at = MAX(last_active_at, ?),
		    updated_at     = ?
		WHERE conversation_id = ?
	`, tokenDelta, at.UnixNano(), r.now().UnixNano(), conversationID)
	if err != nil {
		return fmt.Errorf("storage: BumpActivity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: BumpActivity: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("storage: BumpActivity %s: %w", conversationID, apperrors.ErrSessionNotFound)
	}
	return nil
}

// SoftDelete flips an ACTIVE session owned by userID to DELETED.
// It reports false when the session is missing, owned by someone else or already left ACTIVE.
func (r *SessionRepository) SoftDelete(ctx context.Context, conversationID, userID string) (bool, error) {
	return r.transition(ctx, "SoftDelete", domain.SessionDeleted,
		"conversation_id = ? AND user_id = ?", conversationID, userID)
}

// ListArchivable returns ACTIVE sessions whose last activity is older than idleSince.
func (r *SessionRepository) ListArchivable(ctx context.Context, idleSince time.Time) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE status = ? AND last_active_at < ?
		ORDER BY last_active_at ASC, id ASC
	`, string(domain.SessionActive), idleSince.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("storage: ListArchivable: %w", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListArchivable: %w", err)
	}
	return sessions, nil
}

// Archive flips an ACTIVE session to ARCHIVED if it is still idle since idleSince.
// The idle check is repeated in the statement so a message that arrived after
// ListArchivable keeps the session active.
func (r *SessionRepository) Archive(ctx context.Context, conversationID string, idleSince time.Time) (bool, error) {
	return r.transition(ctx, "Archive", domain.SessionArchived,
		"conversation_id = ? AND last_active_at < ?", conversationID, idleSince.UnixNano())
}

// transition moves the rows matching cond to status to, restricted to the
// statuses allowed to reach it.
func (r *SessionRepository) transition(ctx context.Context, op string, to domain.SessionStatus, cond string, args ...any) (bool, error) {
	sources := domain.TransitionSources(to)
	if len(sources) == 0 {
		return false, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sources)), ", ")
	params := []any{string(to), r.now().UnixNano()}
	params = append(params, lo.ToAnySlice(lo.Map(sources, func(s domain.SessionStatus, _ int) string { return string(s) }))...)
	params = append(params, args...)
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE status IN (`+placeholders+`) AND `+cond, params...)
	if err != nil {
		return false, fmt.Errorf("storage: %s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: %s: %w", op, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s                                  domain.Session
		status                             string
		lastActiveAt, createdAt, updatedAt int64
	)
	err := row.Scan(&s.ConversationID, &s.UserID, &s.Title, &status, &s.MessageCount, &s.TotalTokens,
		&lastActiveAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	s.Status = domain.SessionStatus(status)
	s.LastActiveAt = time.Unix(0, lastActiveAt).UTC()
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	s.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return s, nil
}

func scanSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()
	sessions := make([]domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
