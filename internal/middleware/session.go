package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/auth"
	"github.com/agrisense/pathotrack/internal/model"
)

// SessionCookieName is the cookie carrying the opaque session token.  The
// cookie is the sole source of truth for "who is logged in"; any identity
// the client caches locally must be revalidated through these checks.
const SessionCookieName = "session"

// identityKey is the context key under which the resolved identity is
// stored for handlers.
const identityKey = "identity"

// RequireRole returns a middleware that authorizes the request's session
// cookie against a minimum role.  Authorization failures are terminal for
// the request: missing, unknown or expired sessions yield 401, a valid
// session with insufficient rank yields 403.  On success the resolved
// identity is stored in the context for handlers.
func RequireRole(svc *auth.Service, min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				token = ck.Value
			}
			ident, err := svc.Authorize(c.Request().Context(), token, min)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrSessionExpired):
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
				case errors.Is(err, auth.ErrUnauthenticated):
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
				case errors.Is(err, auth.ErrForbidden):
					return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
				default:
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
				}
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by RequireRole, if any.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}
