package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours/internal/auth"
	"natours/internal/errors"
	"natours/internal/model"
)

type memoryUsers map[uuid.UUID]*model.User

func (m memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m[id], nil
}

type fixture struct {
	e      *echo.Echo
	tokens *auth.JWTService
	users  memoryUsers
	user   *model.User
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		e:      echo.New(),
		tokens: auth.NewJWTService("test-secret", time.Hour),
		users:  memoryUsers{},
	}
	f.user = &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}
	f.users[f.user.ID] = f.user

	token, err := f.tokens.Issue(f.user.ID, f.user.PasswordVersion)
	require.NoError(t, err)
	f.token = token

	f.e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := errors.MapErrorToHTTP(err)
		_ = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	authn := NewAuthenticator(f.tokens, f.users)
	whoami := func(c echo.Context) error {
		if u := CurrentUser(c); u != nil {
			return c.String(http.StatusOK, u.ID.String())
		}
		return c.String(http.StatusOK, "anonymous")
	}
	f.e.GET("/protected", whoami, authn.Protect())
	f.e.GET("/optional", whoami, authn.IsLoggedIn())
	f.e.GET("/admin", whoami, authn.Protect(), RestrictTo(model.RoleAdmin, model.RoleLeadGuide))
	return f
}

func (f *fixture) do(path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func cookie(token string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }
}

func TestProtect(t *testing.T) {
	f := newFixture(t)

	t.Run("bearer header binds the subject", func(t *testing.T) {
		rec := f.do("/protected", bearer(f.token))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, f.user.ID.String(), rec.Body.String())
	})

	t.Run("cookie binds the subject", func(t *testing.T) {
		rec := f.do("/protected", cookie(f.token))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, f.user.ID.String(), rec.Body.String())
	})

	t.Run("no token", func(t *testing.T) {
		rec := f.do("/protected", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := f.do("/protected", bearer("garbage"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), errors.ErrInvalidToken.Error())
	})

	t.Run("logged out cookie", func(t *testing.T) {
		rec := f.do("/protected", cookie("loggedout"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		rec := f.do("/protected", func(r *http.Request) {
			bearer("garbage")(r)
			cookie(f.token)(r)
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProtect_DeletedSubject(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Issue(uuid.New(), 0)
	require.NoError(t, err)

	rec := f.do("/protected", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.ErrUserNoLongerExists.Error())
}

func TestProtect_PasswordChangedAfterIssue(t *testing.T) {
	f := newFixture(t)
	f.user.PasswordVersion = 3

	rec := f.do("/protected", bearer(f.token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.ErrPasswordChanged.Error())
}

func TestProtect_PasswordChangedRightAfterIssue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.user.SetPassword("newpass1", time.Now()))

	rec := f.do("/protected", bearer(f.token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.ErrPasswordChanged.Error())

	fresh, err := f.tokens.Issue(f.user.ID, f.user.PasswordVersion)
	require.NoError(t, err)
	rec = f.do("/protected", bearer(fresh))
	assert.Equal(t, http.StatusOK, rec.Code, "a token issued after the change is accepted")
	assert.Equal(t, f.user.ID.String(), rec.Body.String())
}

func TestIsLoggedIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do("/optional", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = f.do("/optional", cookie("loggedout"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = f.do("/optional", cookie(f.token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.user.ID.String(), rec.Body.String())

	require.NoError(t, f.user.SetPassword("newpass1", time.Now()))
	rec = f.do("/optional", cookie(f.token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String(), "stale sessions are dropped, not rejected")
}

func TestRestrictTo(t *testing.T) {
	f := newFixture(t)

	rec := f.do("/admin", bearer(f.token))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.user.Role = model.RoleLeadGuide
	rec = f.do("/admin", bearer(f.token))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRestrictTo_WithoutProtectPanics(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	h := RestrictTo(model.RoleAdmin)(func(c echo.Context) error { return nil })

	assert.Panics(t, func() { _ = h(c) })
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	boom := stderrors.New("boom")

	var ran []string
	gate := func(name string, err error) Gate {
		return func(echo.Context) error {
			ran = append(ran, name)
			return err
		}
	}
	called := false
	h := Pipeline(gate("a", nil), gate("b", boom), gate("c", nil))(func(echo.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, h(c), boom)
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.False(t, called)
}

func TestOptionalClearsSessionOnFailure(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	bind := func(c echo.Context) error {
		c.Set(sessionKey, &Session{User: &model.User{}})
		return nil
	}
	fail := func(echo.Context) error { return stderrors.New("stale") }

	var seen *model.User
	h := Optional(bind, fail)(func(c echo.Context) error {
		seen = CurrentUser(c)
		return nil
	})

	require.NoError(t, h(c))
	assert.Nil(t, seen)
}
