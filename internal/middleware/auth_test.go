package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	users map[string]*domain.User
	err   error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func TestAuthMiddleware(t *testing.T) {
	ana := &domain.User{Name: "Ana", Email: "ana@example.com"}
	authenticator := stubAuthenticator{users: map[string]*domain.User{"good": ana}}

	e := echo.New()
	e.GET("/api/users/getuser", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome "+CurrentUser(c).Email)
	}, Auth(authenticator))

	t.Run("missing cookie is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/getuser", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes the user on", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/getuser", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome ana@example.com", rec.Body.String())
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/getuser", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "this-is-an-invalid-token"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware_PropagatesStoreFailure(t *testing.T) {
	failure := errors.New("db down")
	mw := Auth(stubAuthenticator{err: failure})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "any"})
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw(func(c echo.Context) error { return nil })(c)
	assert.ErrorIs(t, err, failure)
	assert.Nil(t, CurrentUser(c))
}
