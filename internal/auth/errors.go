// Package auth implements the session authenticator: login issuance,
// session validation with lazy expiry cleanup, and minimum-role
// authorization over the viewer < sampler < admin hierarchy.
package auth

import "errors"

// ErrUnauthenticated is returned when no session token was presented, the
// token is unknown, or the session's user is missing or deactivated.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrSessionExpired is returned when the presented session exists but its
// expiry has passed.  The stale row is deleted as a side effect, so a
// second presentation of the same token fails as unknown instead.
var ErrSessionExpired = errors.New("session expired")

// ErrForbidden is returned when the session is valid but the user's role
// does not meet the required minimum.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials is returned on any login failure: unknown email,
// deactivated account, or wrong password.  The cases are deliberately not
// distinguished so the endpoint cannot be used to enumerate users.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRateLimited is returned when a client address has exceeded its login
// attempt budget for the current window.
var ErrRateLimited = errors.New("too many login attempts")
