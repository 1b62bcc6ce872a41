package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password_hash, role, full_name, is_active, created_at, last_login"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName,
		&u.IsActive, &u.CreatedAt, &u.LastLogin)
	return u, err
}

// Create inserts a user and returns its ID.  The email is normalized to
// lowercase before insert; the password is bcrypt-hashed with the given cost.
func (r *UserRepo) Create(ctx context.Context, email, password string, role model.Role, fullName string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id uint64
	err = r.DB.QueryRowContext(ctx,
		"INSERT INTO users (email, password_hash, role, full_name) VALUES ($1,$2,$3,$4) RETURNING id",
		email, hash, role, fullName).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email)=$1 LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=$1 LIMIT 1", id))
}

// List returns all users ordered by creation time.  Admin-only surface.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName,
			&u.IsActive, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update edits the mutable admin-facing fields.  Users are never physically
// deleted; deactivation flips is_active instead.
func (r *UserRepo) Update(ctx context.Context, id uint64, role model.Role, fullName string, isActive bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=$2, full_name=$3, is_active=$4 WHERE id=$1",
		id, role, fullName, isActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchLastLogin stamps the user's last successful login time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=$2 WHERE id=$1", id, at)
	return err
}
