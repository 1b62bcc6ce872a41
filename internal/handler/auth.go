package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/auth"
	"github.com/agrisense/pathotrack/internal/config"
	"github.com/agrisense/pathotrack/internal/middleware"
)

// AuthHandler bundles dependencies for the login/logout endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Svc     *auth.Service
	Limiter auth.LoginLimiter
}

func NewAuthHandler(cfg config.Config, svc *auth.Service, limiter auth.LoginLimiter) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Svc: svc, Limiter: limiter}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the session cookie.  The rate limiter
// runs before any credential check, so a throttled client gets a 429 even
// with a correct password and learns nothing about the account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.Limiter.Allow(ctx, c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": auth.ErrRateLimited.Error()})
	}

	issued, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	c.SetCookie(h.sessionCookie(issued.Token, issued.ExpiresAt))
	return c.JSON(http.StatusOK, echo.Map{"user": issued.Identity})
}

// Logout deletes the presented session and clears the cookie.  It is
// idempotent: logging out without a live session still returns 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	var token string
	if ck, err := c.Cookie(middleware.SessionCookieName); err == nil {
		token = ck.Value
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Logout(ctx, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity behind the current session.  Clients that cache a
// copy of the identity use this to revalidate it; the cookie stays the sole
// source of truth.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": ident})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}
