package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"natours/internal/config"
	"natours/internal/middleware"
)

const loggedOutValue = "loggedout"

// CookieIssuer writes and clears the session cookie.
type CookieIssuer struct {
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

// NewCookieIssuer reads the cookie lifetime and the secure flag from cfg.
func NewCookieIssuer(cfg *config.Config) *CookieIssuer {
	return &CookieIssuer{lifetime: cfg.CookieLifetime(), secure: cfg.IsProduction(), now: time.Now}
}

// Issue stores token in an httpOnly cookie.
func (ci *CookieIssuer) Issue(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  ci.now().Add(ci.lifetime),
		HttpOnly: true,
		Secure:   ci.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with a value no token verifies, expiring in 10 seconds.
func (ci *CookieIssuer) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    loggedOutValue,
		Path:     "/",
		Expires:  ci.now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   ci.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
