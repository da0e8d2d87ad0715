package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MKabaja/SHIFTFlow/internal/model"
)

// ErrScheduleNotFound is returned when a schedule row does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ScheduleRepo reads and writes the `schedules` table.
type ScheduleRepo struct{ db *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// Dates and times are formatted by MySQL so they reach Go as plain
// YYYY-MM-DD and HH:MM strings.
const scheduleColumns = "id, user_id, DATE_FORMAT(date, '%Y-%m-%d'), position, " +
	"TIME_FORMAT(shift_start, '%H:%i'), TIME_FORMAT(shift_end, '%H:%i'), hours_worked, status, " +
	"hourly_rate, notes, created_at, updated_at"

// ScheduleFilter narrows List.  Zero fields are ignored.
type ScheduleFilter struct {
	UserID uint64
	Date   string
	From   string
	To     string
}

// Create inserts a schedule and reloads it so defaults are populated.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const q = `INSERT INTO schedules
	           (user_id, date, position, shift_start, shift_end, hours_worked, status, hourly_rate, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var rate any
	if s.HourlyRate != "" {
		rate = string(s.HourlyRate)
	}
	status := s.Status
	if status == "" {
		status = model.StatusScheduled
	}
	res, err := r.db.ExecContext(ctx, q, s.UserID, s.Date, string(s.Position), s.ShiftStart, s.ShiftEnd,
		s.HoursWorked, string(status), rate, s.Notes)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID fetches a schedule by id.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id)
	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	return s, err
}

// List returns schedules matching f ordered by date and start time.
func (r *ScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]*model.Schedule, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	q := "SELECT " + scheduleColumns + " FROM schedules"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, shift_start"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus changes the status of a schedule.
func (r *ScheduleRepo) UpdateStatus(ctx context.Context, id uint64, status model.ScheduleStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE schedules SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var (
		s        model.Schedule
		position string
		status   string
		hours    sql.NullInt32
		rate     sql.NullString
		notes    sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Date, &position, &s.ShiftStart, &s.ShiftEnd, &hours,
		&status, &rate, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Position = model.ShiftPosition(position)
	s.Status = model.ScheduleStatus(status)
	if hours.Valid {
		h := uint16(hours.Int32)
		s.HoursWorked = &h
	}
	if rate.Valid {
		s.HourlyRate = model.Decimal(rate.String)
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	return &s, nil
}
