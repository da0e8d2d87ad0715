package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// AvailabilityStore is implemented by repository.AvailabilityRepo.
type AvailabilityStore interface {
	Upsert(ctx context.Context, a *model.Availability) error
	ListForUser(ctx context.Context, userID uint64, from, to string) ([]*model.Availability, error)
	ListByDate(ctx context.Context, date string) ([]*model.Availability, error)
}

// AvailabilityHandler serves /availabilities.
type AvailabilityHandler struct {
	Availabilities AvailabilityStore
}

func NewAvailabilityHandler(s AvailabilityStore) *AvailabilityHandler {
	return &AvailabilityHandler{Availabilities: s}
}

type availabilityReq struct {
	Date        string  `json:"date"`
	IsAvailable *bool   `json:"is_available"`
	Notes       *string `json:"notes"`
}

// Declare handles PUT /availabilities: the caller declares one day.
func (h *AvailabilityHandler) Declare(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return service.Unauthorized()
	}
	var req availabilityReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if !validDate(req.Date) {
		return service.ValidationError(map[string]string{"date": "The date is not a valid date."})
	}
	a := &model.Availability{UserID: u.ID, Date: req.Date, IsAvailable: true, Notes: req.Notes}
	if req.IsAvailable != nil {
		a.IsAvailable = *req.IsAvailable
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Availabilities.Upsert(ctx, a); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Mine handles GET /availabilities/me?from&to.
func (h *AvailabilityHandler) Mine(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return service.Unauthorized()
	}
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if err := checkRange(from, to); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Availabilities.ListForUser(ctx, u.ID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// ByDate handles GET /availabilities?date.
func (h *AvailabilityHandler) ByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if !validDate(date) {
		return service.ValidationError(map[string]string{"date": "The date field is required and must be YYYY-MM-DD."})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Availabilities.ListByDate(ctx, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
