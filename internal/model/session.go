package model

import "time"

// Session models an entry in the `sessions` table.  A session is minted at
// login and read on every authenticated request.  The opaque token handed
// to the client is not stored; only its SHA-256 hash, so a leaked database
// dump cannot be replayed as live sessions.
//
// A session is valid iff the row exists, ExpiresAt is in the future and the
// referenced user is still active.  Expired rows are deleted lazily when a
// request presents them.
type Session struct {
	ID        uint64    // sessions.id
	TokenHash string    // sessions.token_hash (SHA-256 hex of the cookie value)
	UserID    uint64    // sessions.user_id
	ExpiresAt time.Time // sessions.expires_at
	CreatedAt time.Time // sessions.created_at
}
