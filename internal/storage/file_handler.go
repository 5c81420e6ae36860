package storage

import (
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/logging"
)

// FileHandler serves stored objects over HTTP.
type FileHandler struct {
	store Store
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(s Store) *FileHandler {
	return &FileHandler{store: s}
}

// Download streams the object named by the wildcard path parameter.
func (h *FileHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	p := c.Param("*")
	content, err := h.store.Get(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidPath) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		logger.ErrorContext(ctx, "Failed to get file from storage", "path", p, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not retrieve file")
	}
	defer content.Close()

	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, content)
}
