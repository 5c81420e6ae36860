package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/samber/oops"
)

type errorKind struct {
	target  error
	status  int
	code    string
	message string
}

// errorKinds maps domain sentinels to HTTP statuses, in match order.
var errorKinds = []errorKind{
	{domain.ErrUserAlreadyExists, http.StatusConflict, domain.CodeUserExists, "Email has already been registered"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.CodeInvalidCredentials, "Invalid email or password"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, domain.CodeUnauthorized, "Not authorized, please login"},
	{domain.ErrForbidden, http.StatusForbidden, domain.CodeForbidden, "User not authorized"},
	{domain.ErrInvalidResetToken, http.StatusNotFound, domain.CodeResetTokenInvalid, "Invalid or Expired Token"},
	{domain.ErrNotFound, http.StatusNotFound, domain.CodeNotFound, "Not found"},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, domain.CodeFileTooLarge, "File is too large"},
	{domain.ErrUnsupportedFileType, http.StatusBadRequest, domain.CodeUnsupportedFile, "File type is not allowed"},
	{domain.ErrInvalidInput, http.StatusBadRequest, domain.CodeInvalidInput, "Invalid input"},
	{domain.ErrEmailDelivery, http.StatusInternalServerError, domain.CodeEmailDelivery, "Email not sent, please try again"},
}

// httpStatusCodes names the codes of errors raised by echo and its middleware.
var httpStatusCodes = map[int]string{
	http.StatusBadRequest:            domain.CodeInvalidInput,
	http.StatusUnauthorized:          domain.CodeUnauthorized,
	http.StatusForbidden:             domain.CodeForbidden,
	http.StatusNotFound:              domain.CodeNotFound,
	http.StatusRequestEntityTooLarge: domain.CodeFileTooLarge,
	http.StatusTooManyRequests:       "RATE_LIMITED",
}

// resolveError turns any error into a status and a response body.
func resolveError(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, ok := httpStatusCodes[he.Code]
		if !ok {
			code = "HTTP_ERROR"
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorResponse{Code: code, Message: msg}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, ErrorResponse{Code: k.code, Message: oops.GetPublic(err, k.message)}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: domain.CodeInternal, Message: "Internal server error"}
}

// HTTPErrorHandler renders every error returned by a handler as ErrorResponse
// JSON. Server errors are logged with the request-scoped logger.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := resolveError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("Request failed",
			"event", "http_error",
			"status", status,
			"error", err,
		)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("Failed to write error response", "error", werr)
	}
}
