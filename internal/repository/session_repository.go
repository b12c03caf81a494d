package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-site-api/internal/models"
)

const sessionColumns = `id, user_id, expires_at, revoked_at, ip_address, user_agent, created_at`

// SessionRepository stores admin sessions in the admin_sessions table.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SQL-backed session store.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := r.db.Rebind(`INSERT INTO admin_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt, session.RevokedAt,
		session.IPAddress, session.UserAgent, session.CreatedAt,
	); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Find loads a session by id; missing sessions return sql.ErrNoRows.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM admin_sessions WHERE id = ? LIMIT 1`)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Revoke marks the session as signed out.
func (r *SessionRepository) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	query := r.db.Rebind(`UPDATE admin_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`)
	if _, err := r.db.ExecContext(ctx, query, revokedAt, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions that expired or were revoked before cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM admin_sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`)
	res, err := r.db.ExecContext(ctx, query, cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows affected: %w", err)
	}
	return affected, nil
}
