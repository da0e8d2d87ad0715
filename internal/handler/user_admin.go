package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/service"
	"github.com/MKabaja/SHIFTFlow/internal/utils"
)

// PinStore is implemented by repository.UserRepo.
type PinStore interface {
	SetPinHash(ctx context.Context, id uint64, pinHash *string) error
}

// UserAdminHandler serves admin-only account maintenance.
type UserAdminHandler struct {
	Users      PinStore
	BcryptCost int
}

func NewUserAdminHandler(s PinStore, cost int) *UserAdminHandler {
	return &UserAdminHandler{Users: s, BcryptCost: cost}
}

type pinReq struct {
	Pin string `json:"pin"`
}

// SetPin handles PUT /users/:id/pin.  An empty PIN clears it, which
// disables the PIN login for that user.
func (h *UserAdminHandler) SetPin(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req pinReq
	if err := bind(c, &req); err != nil {
		return err
	}
	hash, err := utils.HashPin(req.Pin, h.BcryptCost)
	if errors.Is(err, utils.ErrPinTooShort) {
		return service.ValidationError(map[string]string{"pin": "The pin must be at least 4 characters."})
	}
	if err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.SetPinHash(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	msg := "PIN updated"
	if hash == nil {
		msg = "PIN cleared"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
