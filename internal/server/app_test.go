package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/sparx/internal/auth"
	"github.com/nfrund/sparx/internal/config"
	"github.com/nfrund/sparx/internal/handlers"
	"github.com/nfrund/sparx/internal/inventory"
	"github.com/nfrund/sparx/internal/metrics"
	"github.com/nfrund/sparx/internal/middleware"
	"github.com/nfrund/sparx/internal/server"
	"github.com/nfrund/sparx/internal/storage"
	"github.com/nfrund/sparx/internal/support"
	"github.com/nfrund/sparx/internal/testutils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const uploadsURL = "http://localhost:5000/uploads"

type healthy bool

func (h healthy) IsHealthy() bool { return bool(h) }

type testApp struct {
	srv    *server.Server
	mailer *testutils.RecordingMailer
	users  *testutils.MemoryUserRepository
}

// newTestApp builds the full HTTP stack over in-memory stores.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	testutils.SetTestEnv(t)
	t.Setenv("FRONTEND_URL", "http://front.example")
	t.Setenv("EMAIL_USER", "support@sparx.example")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	users := testutils.NewMemoryUserRepository()
	mailer := &testutils.RecordingMailer{}
	publisher := &testutils.RecordingPublisher{}
	files := storage.NewAferoStore(afero.NewMemMapFs(), uploadsURL)

	authSvc := auth.NewService(auth.Dependencies{
		Users:       users,
		ResetTokens: testutils.NewMemoryResetTokenRepository(),
		Hasher:      auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens:      auth.NewTokenIssuer(cfg.GetJWTSecret(), 24*time.Hour),
		Mailer:      mailer,
		Publisher:   publisher,
	}, auth.Options{FrontendURL: cfg.GetFrontendURL(), EmailSender: "noreply@sparx.example"})

	inventorySvc := inventory.NewService(inventory.Dependencies{
		Products:  testutils.NewMemoryProductRepository(),
		Store:     files,
		Publisher: publisher,
	}, 1<<20)

	srv, err := server.New(server.Dependencies{
		Config:    cfg,
		Auth:      authSvc,
		Inventory: inventorySvc,
		Support:   support.NewService(mailer, publisher, "inbox@sparx.example", "noreply@sparx.example"),
		Health:    healthy(true),
		Files:     files,
		Metrics:   metrics.New(),
	})
	require.NoError(t, err)
	srv.RegisterRoutes()

	return &testApp{srv: srv, mailer: mailer, users: users}
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.srv.E.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doMultipart(t *testing.T, method, path string, fields map[string]string, image []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="widget.png"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.srv.E.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	t.Fatalf("response did not set the %q cookie", middleware.CookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var resetLink = regexp.MustCompile(`/resetpassword/([0-9a-f]{64}[A-Za-z0-9]+)`)

func TestAuthFlow_Ana(t *testing.T) {
	app := newTestApp(t)
	creds := map[string]string{"email": "ana@x.com", "password": "secret1"}

	rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[handlers.UserResponse](t, rec)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, "Ana", registered.Name)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)

	rec = app.do(t, http.MethodPost, "/api/users/login", creds, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decode[handlers.UserResponse](t, rec)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, "ana@x.com", loggedIn.Email)
	assert.Empty(t, loggedIn.Token)
	cookie = sessionCookie(t, rec)

	rec = app.do(t, http.MethodPost, "/api/users/login", map[string]string{"email": "ana@x.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = app.do(t, http.MethodGet, "/api/users/getuser", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@x.com", decode[handlers.UserResponse](t, rec).Email)

	rec = app.do(t, http.MethodPost, "/api/users/forgotpassword", map[string]string{"email": "ana@x.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[handlers.StatusResponse](t, rec).Success)

	msg, ok := app.mailer.Last()
	require.True(t, ok)
	match := resetLink.FindStringSubmatch(msg.HTML)
	require.Len(t, match, 2, "reset email must contain the link")
	assert.True(t, strings.HasSuffix(match[1], registered.ID))

	rec = app.do(t, http.MethodPut, "/api/users/resetpassword/"+match[1], map[string]string{"password": "newpass1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/users/login", map[string]string{"email": "ana@x.com", "password": "newpass1"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/users/login", creds, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{
			"name": "Other", "email": "ana@x.com", "password": "secret2",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decode[handlers.ErrorResponse](t, rec)
		assert.Equal(t, "USER_EXISTS", body.Code)
		assert.Equal(t, 1, app.users.Count())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{"email": "x@x.com"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please fill in all required fields", decode[handlers.ErrorResponse](t, rec).Message)
	})

	t.Run("loggedin", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/users/loggedin", nil, cookie)
		assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

		rec = app.do(t, http.MethodGet, "/api/users/loggedin", nil, nil)
		assert.Equal(t, "false", strings.TrimSpace(rec.Body.String()))

		rec = app.do(t, http.MethodGet, "/api/users/loggedin", nil, &http.Cookie{Name: middleware.CookieName, Value: "garbage"})
		assert.Equal(t, "false", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("update profile ignores email", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, "/api/users/updateuser", map[string]string{
			"name": "Ana B", "email": "other@x.com", "bio": "Inventory lead",
		}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		profile := decode[handlers.UserResponse](t, rec)
		assert.Equal(t, "Ana B", profile.Name)
		assert.Equal(t, "ana@x.com", profile.Email)
		assert.Equal(t, "Inventory lead", profile.Bio)
	})

	t.Run("bio limit counts characters", func(t *testing.T) {
		bio := strings.Repeat("日", 100)
		rec := app.do(t, http.MethodPatch, "/api/users/updateuser", map[string]string{"bio": bio}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, bio, decode[handlers.UserResponse](t, rec).Bio)

		rec = app.do(t, http.MethodPatch, "/api/users/updateuser", map[string]string{"bio": strings.Repeat("日", 251)}, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("change password", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, "/api/users/changepassword", map[string]string{
			"oldPassword": "nope", "password": "secret2",
		}, cookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Old password is incorrect", decode[handlers.ErrorResponse](t, rec).Message)

		rec = app.do(t, http.MethodPatch, "/api/users/changepassword", map[string]string{
			"oldPassword": "secret1", "password": "secret2",
		}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Password changed successfully", rec.Body.String())
	})

	t.Run("protected routes need a session", func(t *testing.T) {
		for _, path := range []string{"/api/users/getuser", "/api/products"} {
			rec := app.do(t, http.MethodGet, path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		}
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/users/logout", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		cleared := sessionCookie(t, rec)
		assert.Empty(t, cleared.Value)
		assert.True(t, cleared.MaxAge < 0)
		assert.Equal(t, "Logged out successfully", decode[handlers.MessageResponse](t, rec).Message)
	})

	t.Run("unknown reset token", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, "/api/users/resetpassword/deadbeef", map[string]string{"password": "x12345"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProductEndpoints(t *testing.T) {
	app := newTestApp(t)

	register := func(email string) *http.Cookie {
		rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{
			"name": "Owner", "email": email, "password": "secret1",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		return sessionCookie(t, rec)
	}
	ana := register("ana@x.com")
	bob := register("bob@x.com")

	fields := map[string]string{
		"name": "Widget", "category": "Tools", "quantity": "3",
		"price": "9.50", "description": "A widget",
	}
	png := []byte("\x89PNG\r\n\x1a\nfake image bytes")

	rec := app.doMultipart(t, http.MethodPost, "/api/products", fields, png, ana)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[handlers.ProductResponse](t, rec)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 3, created.Quantity)
	assert.InDelta(t, 9.5, created.Price, 0.001)
	assert.True(t, strings.HasPrefix(created.SKU, "SKU-"))
	require.NotNil(t, created.Image)
	assert.Equal(t, "widget.png", created.Image.FileName)
	assert.Equal(t, "image/png", created.Image.FileType)
	require.True(t, strings.HasPrefix(created.Image.FilePath, uploadsURL+"/"))

	t.Run("image is served", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, strings.TrimPrefix(created.Image.FilePath, "http://localhost:5000"), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, png, rec.Body.Bytes())
	})

	t.Run("unsupported image type", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range fields {
			require.NoError(t, w.WriteField(k, v))
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="notes.txt"`)
		h.Set("Content-Type", "text/plain")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write([]byte("hello"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.AddCookie(ana)
		rec := httptest.NewRecorder()
		app.srv.E.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list and get", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/products", nil, ana)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handlers.ProductResponse](t, rec), 1)

		rec = app.do(t, http.MethodGet, "/api/products", nil, bob)
		assert.Len(t, decode[[]handlers.ProductResponse](t, rec), 0)

		rec = app.do(t, http.MethodGet, "/api/products/"+created.ID, nil, ana)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/products/"+created.ID, nil, bob)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/products/missing", nil, ana)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update with json", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, "/api/products/"+created.ID, map[string]any{
			"quantity": 7, "sku": "SKU-CHANGED",
		}, ana)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[handlers.ProductResponse](t, rec)
		assert.Equal(t, 7, updated.Quantity)
		assert.Equal(t, created.SKU, updated.SKU)
		assert.Equal(t, "Widget", updated.Name)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, bob)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, ana)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Product deleted.", decode[handlers.MessageResponse](t, rec).Message)

		rec = app.do(t, http.MethodGet, strings.TrimPrefix(created.Image.FilePath, "http://localhost:5000"), nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestContactEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = app.do(t, http.MethodPost, "/api/contactus", map[string]string{"subject": "Help", "message": "It broke"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/contactus", map[string]string{"subject": "Help"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/contactus", map[string]string{"subject": "Help", "message": "It broke"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Email sent"}`, rec.Body.String())

	msg, ok := app.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "Help", msg.Subject)
	assert.Equal(t, "ana@x.com", msg.ReplyTo)
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, "Home Page", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sparx_http_requests_total")

	rec = app.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[handlers.ErrorResponse](t, rec).Code)
}

func TestRateLimitedRoutes(t *testing.T) {
	app := newTestApp(t)
	creds := map[string]string{"email": "nobody@x.com", "password": "secret1"}

	for i := 0; i < 10; i++ {
		rec := app.do(t, http.MethodPost, "/api/users/login", creds, nil)
		require.NotEqual(t, http.StatusTooManyRequests, rec.Code, "login %d should not be limited", i+1)
	}
	rec := app.do(t, http.MethodPost, "/api/users/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[handlers.ErrorResponse](t, rec).Code)

	rec = app.do(t, http.MethodPost, "/api/users/forgotpassword", map[string]string{"email": "nobody@x.com"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "forgot-password has its own budget")

	rec = app.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Bea", "email": "bea@x.com", "password": "secret1",
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
