package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// Authenticator is the part of service.AuthService the auth endpoints use.
type Authenticator interface {
	LoginWithPassword(ctx context.Context, email, password string) (*model.LoginResult, error)
	LoginWithPin(ctx context.Context, employeeID, pin string) (*model.LoginResult, error)
	CurrentIdentity(u *model.User) model.Profile
	Logout(ctx context.Context, raw string) (*service.LogoutResult, error)
}

// AuthHandler serves /auth.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{Auth: a}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type pinLoginReq struct {
	EmployeeID flexID `json:"employee_id"`
	Pin        string `json:"pin"`
}

// flexID accepts an id sent either as a JSON number or as a string.
// Anything else decodes to a value the service rejects as malformed.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*f = flexID(b)
	default:
		*f = "invalid"
	}
	return nil
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Auth.LoginWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// LoginPin handles POST /auth/login-pin.
func (h *AuthHandler) LoginPin(c echo.Context) error {
	var req pinLoginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Auth.LoginWithPin(ctx, string(req.EmployeeID), req.Pin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Me handles GET /auth/me.  The role gate in front guarantees a user.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return service.Unauthorized()
	}
	return c.JSON(http.StatusOK, h.Auth.CurrentIdentity(u))
}

// Logout handles POST /auth/logout.  It reads the bearer token itself so
// an expired or already revoked token can still be logged out.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, _ := service.ExtractToken(c.Request())
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Auth.Logout(ctx, raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
