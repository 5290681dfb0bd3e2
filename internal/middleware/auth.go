package middleware

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"natours/internal/auth"
	"natours/internal/errors"
	"natours/internal/model"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "jwt"

const (
	claimsKey  = "natours.claims"
	sessionKey = "natours.session"
)

var errTokenMissing = stderrors.New("no session token in header or cookie")

// TokenVerifier checks a session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLoader loads the subject of a verified token.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Session is what downstream handlers know about the caller.
type Session struct {
	User     *model.User
	IssuedAt time.Time
	// PasswordVersion is the subject's password version when the token was issued.
	PasswordVersion int64
}

// CurrentSession returns the session bound to the request, or nil.
func CurrentSession(c echo.Context) *Session {
	s, _ := c.Get(sessionKey).(*Session)
	return s
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c echo.Context) *model.User {
	if s := CurrentSession(c); s != nil {
		return s.User
	}
	return nil
}

// Gate is one step of a request pipeline. A non-nil error stops the pipeline.
type Gate func(c echo.Context) error

// Pipeline runs gates in order and calls the handler only when all pass.
// The first failure is returned as is.
func Pipeline(gates ...Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, gate := range gates {
				if err := gate(c); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// Optional runs gates in order and always calls the handler. On the first
// failure the request continues without a session.
func Optional(gates ...Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, gate := range gates {
				if err := gate(c); err != nil {
					c.Set(sessionKey, nil)
					break
				}
			}
			return next(c)
		}
	}
}

// Authenticator binds sessions to requests.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLoader
}

// NewAuthenticator creates an authenticator over a token verifier and a user store.
func NewAuthenticator(tokens TokenVerifier, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Protect rejects the request with a NotAuthenticated error unless it carries
// a valid token whose subject still exists and has not changed password since.
func (a *Authenticator) Protect() echo.MiddlewareFunc {
	extract := a.extractor(func(c echo.Context, err error) error {
		var missing *echojwt.TokenExtractionError
		if stderrors.As(err, &missing) {
			return errors.ErrNotLoggedIn
		}
		return errors.ErrInvalidToken
	}, false)
	gates := Pipeline(a.loadSubject, a.rejectStale)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return extract(gates(next))
	}
}

// IsLoggedIn binds a session when the request carries a valid one and
// otherwise lets the request through anonymously. It never fails.
func (a *Authenticator) IsLoggedIn() echo.MiddlewareFunc {
	extract := a.extractor(func(echo.Context, error) error { return nil }, true)
	gates := Optional(a.loadSubject, a.rejectStale)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return extract(gates(next))
	}
}

func (a *Authenticator) extractor(onError func(echo.Context, error) error, continueOnIgnored bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:       claimsKey,
		TokenLookupFuncs: []echomw.ValuesExtractor{sessionToken},
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return a.tokens.Verify(token)
		},
		ErrorHandler:           onError,
		ContinueOnIgnoredError: continueOnIgnored,
	})
}

// sessionToken reads a Bearer token from the Authorization header and falls
// back to the jwt cookie only when no Bearer header is present.
func sessionToken(c echo.Context) ([]string, error) {
	const prefix = "Bearer "
	if h := c.Request().Header.Get(echo.HeaderAuthorization); len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return []string{strings.TrimSpace(h[len(prefix):])}, nil
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return []string{cookie.Value}, nil
	}
	return nil, errTokenMissing
}

func (a *Authenticator) loadSubject(c echo.Context) error {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return errors.ErrNotLoggedIn
	}
	id, err := claims.SubjectID()
	if err != nil {
		return errors.ErrInvalidToken
	}
	user, err := a.users.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.ErrUserNoLongerExists
	}
	c.Set(sessionKey, &Session{User: user, IssuedAt: claims.IssuedAtTime(), PasswordVersion: claims.PasswordVersion})
	return nil
}

func (a *Authenticator) rejectStale(c echo.Context) error {
	s := CurrentSession(c)
	if s == nil {
		return errors.ErrNotLoggedIn
	}
	if s.User.ChangedPasswordAfter(s.PasswordVersion) {
		return errors.ErrPasswordChanged
	}
	return nil
}

// RestrictTo admits only users holding one of roles. It must run after
// Protect; a request without a session is a wiring bug and panics.
func RestrictTo(roles ...string) echo.MiddlewareFunc {
	return Pipeline(func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			panic("middleware: RestrictTo used on a route without Protect")
		}
		if !user.HasRole(roles...) {
			return errors.ErrForbidden
		}
		return nil
	})
}
