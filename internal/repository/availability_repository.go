package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKabaja/SHIFTFlow/internal/model"
)

// AvailabilityRepo stores per-day availability declarations.
type AvailabilityRepo struct{ db *sql.DB }

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const availabilityColumns = "id, user_id, DATE_FORMAT(date, '%Y-%m-%d'), is_available, " +
	"DATE_FORMAT(submission_date, '%Y-%m-%d'), notes, created_at, updated_at"

// Upsert records a declaration.  The (user_id, date) pair is unique, so a
// second declaration for the same day replaces the first.
func (r *AvailabilityRepo) Upsert(ctx context.Context, a *model.Availability) error {
	const q = `INSERT INTO availabilities (user_id, date, is_available, submission_date, notes)
	           VALUES (?, ?, ?, CURDATE(), ?)
	           ON DUPLICATE KEY UPDATE is_available = VALUES(is_available),
	                                   submission_date = VALUES(submission_date),
	                                   notes = VALUES(notes),
	                                   updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, q, a.UserID, a.Date, a.IsAvailable, a.Notes); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+availabilityColumns+" FROM availabilities WHERE user_id = ? AND date = ?", a.UserID, a.Date)
	got, err := scanAvailability(row)
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// ListForUser returns a user's declarations between from and to
// inclusive.  Empty bounds are open.
func (r *AvailabilityRepo) ListForUser(ctx context.Context, userID uint64, from, to string) ([]*model.Availability, error) {
	q := "SELECT " + availabilityColumns + " FROM availabilities WHERE user_id = ?"
	args := []any{userID}
	if from != "" {
		q += " AND date >= ?"
		args = append(args, from)
	}
	if to != "" {
		q += " AND date <= ?"
		args = append(args, to)
	}
	q += " ORDER BY date"
	return r.list(ctx, q, args...)
}

// ListByDate returns every declaration for a day.
func (r *AvailabilityRepo) ListByDate(ctx context.Context, date string) ([]*model.Availability, error) {
	return r.list(ctx,
		"SELECT "+availabilityColumns+" FROM availabilities WHERE date = ? ORDER BY user_id", date)
}

func (r *AvailabilityRepo) list(ctx context.Context, q string, args ...any) ([]*model.Availability, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Availability{}
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAvailability(row rowScanner) (*model.Availability, error) {
	var (
		a         model.Availability
		submitted sql.NullString
		notes     sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.IsAvailable, &submitted, &notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if submitted.Valid {
		a.SubmissionDate = &submitted.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return &a, nil
}
