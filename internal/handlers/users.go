package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/auth"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/middleware"
)

// AuthService is the part of auth.Service the user endpoints need.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string)
	CheckSession(token string) bool
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	SessionTTL() time.Duration
}

// UserHandler handles the account endpoints under /api/users.
type UserHandler struct {
	auth AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// currentUser returns the user stored by the Auth middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil || user.ID == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, please login")
	}
	return user, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	setAuthCookie(c, session.Token, h.auth.SessionTTL())
	res := NewUserResponse(session.User)
	res.Token = session.Token
	return c.JSON(http.StatusCreated, res)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setAuthCookie(c, session.Token, h.auth.SessionTTL())
	return c.JSON(http.StatusOK, NewUserResponse(session.User))
}

// Logout handles GET /api/users/logout. It always succeeds.
func (h *UserHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.CookieName); err == nil && cookie.Value != "" {
		h.auth.Logout(c.Request().Context(), cookie.Value)
	}
	clearAuthCookie(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GetUser handles GET /api/users/getuser.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.auth.GetProfile(c.Request().Context(), user.Key())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewUserResponse(profile))
}

// LoggedIn handles GET /api/users/loggedin and answers a bare JSON boolean.
func (h *UserHandler) LoggedIn(c echo.Context) error {
	cookie, err := c.Cookie(middleware.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, false)
	}
	return c.JSON(http.StatusOK, h.auth.CheckSession(cookie.Value))
}

// UpdateUser handles PATCH /api/users/updateuser.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.auth.UpdateProfile(c.Request().Context(), user.Key(), domain.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
		Bio:   req.Bio,
		Photo: req.Photo,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewUserResponse(updated))
}

// ChangePassword handles PATCH /api/users/changepassword.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user.Key(), req.OldPassword, req.Password); err != nil {
		return err
	}
	return c.String(http.StatusOK, "Password changed successfully")
}

// ForgotPassword handles POST /api/users/forgotpassword.
func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Success: true, Message: "Reset email sent"})
}

// ResetPassword handles PUT /api/users/resetpassword/:resetToken.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.Request().Context(), c.Param("resetToken"), req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful, you can login now"})
}
