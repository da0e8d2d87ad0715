package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// PositionStore is implemented by repository.PositionRepo.
type PositionStore interface {
	ListAll(ctx context.Context) ([]*model.Position, error)
	Create(ctx context.Context, p *model.Position) error
	Delete(ctx context.Context, id uint64) error
}

// PositionHandler serves /positions.  Purge, when set, drops cached
// GET /positions responses after a write.
type PositionHandler struct {
	Positions PositionStore
	Purge     func(ctx context.Context) error
	Log       logrus.FieldLogger
}

func NewPositionHandler(s PositionStore, purge func(ctx context.Context) error, log logrus.FieldLogger) *PositionHandler {
	return &PositionHandler{Positions: s, Purge: purge, Log: log}
}

type positionReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

const maxNameLength = 255

// List handles GET /positions.
func (h *PositionHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Positions.ListAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Create handles POST /positions.
func (h *PositionHandler) Create(c echo.Context) error {
	var req positionReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	fields := map[string]string{}
	switch {
	case req.Name == "":
		fields["name"] = "The name field is required."
	case len(req.Name) > maxNameLength:
		fields["name"] = "The name must not be greater than 255 characters."
	}
	if req.Description != nil && len(*req.Description) > maxNameLength {
		fields["description"] = "The description must not be greater than 255 characters."
	}
	if len(fields) > 0 {
		return service.ValidationError(fields)
	}

	p := &model.Position{Name: req.Name, Description: req.Description}
	if u := middleware.CurrentUser(c); u != nil {
		id := u.ID
		p.CreatedBy = &id
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Positions.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return service.ValidationError(map[string]string{"name": "The name has already been taken."})
		}
		return err
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, p)
}

// Delete handles DELETE /positions/:id.
func (h *PositionHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Positions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Position not found")
		}
		return err
	}
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *PositionHandler) purge(ctx context.Context) {
	if h.Purge == nil {
		return
	}
	if err := h.Purge(ctx); err != nil && h.Log != nil {
		h.Log.WithError(err).Warn("positions: cache purge failed")
	}
}
