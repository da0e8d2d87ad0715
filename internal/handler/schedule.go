package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// ScheduleStore is implemented by repository.ScheduleRepo.
type ScheduleStore interface {
	Create(ctx context.Context, s *model.Schedule) error
	List(ctx context.Context, f repository.ScheduleFilter) ([]*model.Schedule, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ScheduleStatus) error
}

// UserLookup loads the employee a shift is assigned to.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// ScheduleHandler serves /schedules.
type ScheduleHandler struct {
	Schedules ScheduleStore
	Users     UserLookup
}

func NewScheduleHandler(s ScheduleStore, u UserLookup) *ScheduleHandler {
	return &ScheduleHandler{Schedules: s, Users: u}
}

type scheduleReq struct {
	UserID     uint64  `json:"user_id"`
	Date       string  `json:"date"`
	Position   string  `json:"position"`
	ShiftStart string  `json:"shift_start"`
	ShiftEnd   string  `json:"shift_end"`
	Status     string  `json:"status"`
	HourlyRate *string `json:"hourly_rate"`
	Notes      *string `json:"notes"`
}

type statusReq struct {
	Status string `json:"status"`
}

// HoursBetween returns the whole hours from start to end, both "HH:MM".
// An end earlier than the start belongs to the next day.
func HoursBetween(start, end string) (uint16, bool) {
	s, err1 := time.Parse("15:04", start)
	e, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil || s.Equal(e) {
		return 0, false
	}
	d := e.Sub(s)
	if d < 0 {
		d += 24 * time.Hour
	}
	return uint16(d / time.Hour), true
}

// Create handles POST /schedules.
func (h *ScheduleHandler) Create(c echo.Context) error {
	var req scheduleReq
	if err := bind(c, &req); err != nil {
		return err
	}

	fields := map[string]string{}
	if req.UserID == 0 {
		fields["user_id"] = "The user id field is required."
	}
	if !validDate(req.Date) {
		fields["date"] = "The date is not a valid date."
	}
	if !model.ValidShiftPosition(req.Position) {
		fields["position"] = "The selected position is invalid."
	}
	hours, ok := HoursBetween(req.ShiftStart, req.ShiftEnd)
	if !ok {
		fields["shift_end"] = "The shift start and end must be distinct HH:MM times."
	}
	status := model.StatusScheduled
	if req.Status != "" {
		st, ok := model.ParseScheduleStatus(req.Status)
		if !ok {
			fields["status"] = "The selected status is invalid."
		}
		status = st
	}
	if req.HourlyRate != nil && !model.ValidDecimal(strings.TrimSpace(*req.HourlyRate)) {
		fields["hourly_rate"] = "The hourly rate must be a number with at most 2 decimal places."
	}
	if len(fields) > 0 {
		return service.ValidationError(fields)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	employee, err := h.Users.GetByID(ctx, req.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return service.ValidationError(map[string]string{"user_id": "The selected user id is invalid."})
	}
	if err != nil {
		return err
	}

	s := &model.Schedule{
		UserID:      req.UserID,
		Date:        req.Date,
		Position:    model.ShiftPosition(req.Position),
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
		HoursWorked: &hours,
		Status:      status,
		HourlyRate:  employee.HourlyRate,
		Notes:       req.Notes,
	}
	if req.HourlyRate != nil {
		s.HourlyRate = model.Decimal(strings.TrimSpace(*req.HourlyRate))
	}
	if err := h.Schedules.Create(ctx, s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

// Mine handles GET /schedules/me?from&to.
func (h *ScheduleHandler) Mine(c echo.Context) error {
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
	list, err := h.Schedules.List(ctx, repository.ScheduleFilter{UserID: u.ID, From: from, To: to})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// List handles GET /schedules?date&user_id.
func (h *ScheduleHandler) List(c echo.Context) error {
	f := repository.ScheduleFilter{Date: c.QueryParam("date")}
	fields := map[string]string{}
	if f.Date != "" && !validDate(f.Date) {
		fields["date"] = "The date is not a valid date."
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			fields["user_id"] = "The user id must be a positive integer."
		}
		f.UserID = id
	}
	if len(fields) > 0 {
		return service.ValidationError(fields)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Schedules.List(ctx, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateStatus handles PATCH /schedules/:id/status.
func (h *ScheduleHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	st, ok := model.ParseScheduleStatus(req.Status)
	if !ok {
		return service.ValidationError(map[string]string{"status": "The selected status is invalid."})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Schedules.UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Schedule not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": st})
}

// checkRange validates optional from/to query dates.
func checkRange(from, to string) error {
	fields := map[string]string{}
	if from != "" && !validDate(from) {
		fields["from"] = "The from is not a valid date."
	}
	if to != "" && !validDate(to) {
		fields["to"] = "The to is not a valid date."
	}
	if len(fields) == 0 && from != "" && to != "" && to < from {
		fields["to"] = "The to must be a date after or equal to from."
	}
	if len(fields) > 0 {
		return service.ValidationError(fields)
	}
	return nil
}
