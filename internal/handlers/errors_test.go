package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "public message wins",
			err:     oops.Code(domain.CodeInvalidInput).Public("Please add email and password").Wrap(domain.ErrInvalidInput),
			status:  http.StatusBadRequest,
			code:    domain.CodeInvalidInput,
			message: "Please add email and password",
		},
		{
			name:    "default message",
			err:     fmt.Errorf("lookup: %w", domain.ErrNotFound),
			status:  http.StatusNotFound,
			code:    domain.CodeNotFound,
			message: "Not found",
		},
		{
			name:    "expired reset token looks like not found",
			err:     domain.ErrInvalidResetToken,
			status:  http.StatusNotFound,
			code:    domain.CodeResetTokenInvalid,
			message: "Invalid or Expired Token",
		},
		{
			name:    "duplicate user wrapped by the store",
			err:     errors.Join(domain.ErrUserAlreadyExists, errors.New("index already contains")),
			status:  http.StatusConflict,
			code:    domain.CodeUserExists,
			message: "Email has already been registered",
		},
		{
			name:    "credentials",
			err:     domain.ErrInvalidCredentials,
			status:  http.StatusUnauthorized,
			code:    domain.CodeInvalidCredentials,
			message: "Invalid email or password",
		},
		{
			name:    "forbidden",
			err:     domain.ErrForbidden,
			status:  http.StatusForbidden,
			code:    domain.CodeForbidden,
			message: "User not authorized",
		},
		{
			name:    "too large",
			err:     domain.ErrFileTooLarge,
			status:  http.StatusRequestEntityTooLarge,
			code:    domain.CodeFileTooLarge,
			message: "File is too large",
		},
		{
			name:    "email delivery",
			err:     errors.Join(domain.ErrEmailDelivery, errors.New("smtp: 421")),
			status:  http.StatusInternalServerError,
			code:    domain.CodeEmailDelivery,
			message: "Email not sent, please try again",
		},
		{
			name:    "echo error",
			err:     echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again later."),
			status:  http.StatusTooManyRequests,
			code:    "RATE_LIMITED",
			message: "Too many requests. Please try again later.",
		},
		{
			name:    "unknown",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			code:    domain.CodeInternal,
			message: "Internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := resolveError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(domain.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
