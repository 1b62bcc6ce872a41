package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/agrisense/pathotrack/internal/model"
)

// SessionRepo persists login sessions (single 'token_hash' column; the raw
// token never touches the database).
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for the hashed token.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1,$2,$3)",
		userID, tokenHash, expiresAt)
	return err
}

// GetByTokenHash returns the session matching the hashed token, expired or
// not.  Expiry policy belongs to the auth service, which also performs the
// lazy delete.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash=$1 LIMIT 1",
		tokenHash).Scan(&s.ID, &s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// DeleteByTokenHash removes the session row for the hashed token.  Deleting
// an absent row is not an error, which makes logout idempotent.
func (r *SessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE token_hash=$1", tokenHash)
	return err
}

// DeleteForUser removes every session belonging to a user.  Used when an
// admin deactivates an account so existing cookies die immediately.
func (r *SessionRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=$1", userID)
	return err
}
