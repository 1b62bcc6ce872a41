package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/utils"
)

// dummyHash is a throwaway bcrypt hash compared against on unknown-email
// logins, so that path costs the same bcrypt work as a wrong password and
// response timing cannot be used to enumerate accounts.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pathotrack-no-such-user"), bcrypt.DefaultCost)

// Identity is the resolved actor of an authenticated request.
type Identity struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// UserStore is the slice of user persistence the authenticator needs.
// *repository.UserRepo satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// SessionStore is the slice of session persistence the authenticator needs.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	GetByTokenHash(ctx context.Context, tokenHash string) (model.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}

// Service validates session tokens and issues new ones at login.  Every
// check is a single synchronous read; failures are terminal for the
// request, nothing is retried.
type Service struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration

	now func() time.Time // injectable clock for expiry tests
}

func NewService(users UserStore, sessions SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IssuedSession is what Login hands back: the resolved identity plus the
// raw token the caller must set as an HTTP-only cookie with matching expiry.
type IssuedSession struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and mints a new session.  Unknown email,
// deactivated account and wrong password all collapse into
// ErrInvalidCredentials.  Rate limiting happens before this is called.
func (s *Service) Login(ctx context.Context, email, password string) (IssuedSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = utils.VerifyPassword(string(dummyHash), password)
			return IssuedSession{}, ErrInvalidCredentials
		}
		return IssuedSession{}, fmt.Errorf("load user: %w", err)
	}
	// The compare runs even for deactivated accounts so every rejection
	// costs the same.
	ok := utils.VerifyPassword(u.PasswordHash, password)
	if !u.IsActive || !ok {
		return IssuedSession{}, ErrInvalidCredentials
	}

	token, err := utils.NewSessionToken()
	if err != nil {
		return IssuedSession{}, fmt.Errorf("mint token: %w", err)
	}
	expiresAt := s.now().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, u.ID, utils.HashToken(token), expiresAt); err != nil {
		return IssuedSession{}, fmt.Errorf("store session: %w", err)
	}
	// Best effort; a failed stamp must not invalidate a successful login.
	_ = s.users.TouchLastLogin(ctx, u.ID, s.now())

	return IssuedSession{
		Identity:  Identity{ID: u.ID, Email: u.Email, Role: u.Role},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authorize resolves a session token and enforces a minimum role.  An
// expired session is deleted on sight (lazy cleanup) before the request is
// rejected, so subsequent lookups of the same token fail as unknown.
func (s *Service) Authorize(ctx context.Context, token string, required model.Role) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrUnauthenticated
	}
	hash := utils.HashToken(token)
	sess, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	if !sess.ExpiresAt.After(s.now()) {
		_ = s.sessions.DeleteByTokenHash(ctx, hash)
		return Identity{}, ErrSessionExpired
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return Identity{}, ErrUnauthenticated
	}
	if !u.Role.AtLeast(required) {
		return Identity{}, ErrForbidden
	}
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// Logout deletes the session matching the presented token.  Absence of a
// matching row is not an error, so repeated logouts are harmless.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessions.DeleteByTokenHash(ctx, utils.HashToken(token))
}
