package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/middleware"
)

// SupportService sends contact requests to the support inbox.
type SupportService interface {
	ContactSupport(ctx context.Context, user *domain.User, subject, message string) error
}

// ContactHandler handles POST /api/contactus.
type ContactHandler struct {
	support SupportService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(support SupportService) *ContactHandler {
	return &ContactHandler{support: support}
}

// ContactUs forwards the message to support.
func (h *ContactHandler) ContactUs(c echo.Context) error {
	var req ContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.support.ContactSupport(c.Request().Context(), middleware.CurrentUser(c), req.Subject, req.Message); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Success: true, Message: "Email sent"})
}
