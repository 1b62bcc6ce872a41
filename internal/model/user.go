package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Accounts are created by admin action and are deactivated rather
// than deleted, since sampling routes keep a created_by reference to their
// author.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address, stored lowercase.
//	PasswordHash – bcrypt hashed password.
//	Role         – one of viewer, sampler, admin.
//	FullName     – display name shown in audit listings.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	LastLogin    – timestamp of the most recent successful login (nil if never).
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         Role       // users.role
	FullName     string     // users.full_name
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	LastLogin    *time.Time // users.last_login (nullable)
}
