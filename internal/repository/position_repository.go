// This file defines the repository for job positions.  Positions are
// seeded by the migrations and extended by managers.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
	"fmt"

	"github.com/MKabaja/SHIFTFlow/internal/model"
)

// ErrPositionNotFound is returned when a position cannot be found in the DB.
var ErrPositionNotFound = errors.New("position not found")

// PositionRepo encapsulates all database queries related to positions.
type PositionRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewPositionRepo constructs a PositionRepo with the provided DB handle.
func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

const positionColumns = "id, name, description, created_by, created_at, updated_at"

// Create inserts a new position.  On success the position's ID and
// timestamps are populated from the stored row.
func (r *PositionRepo) Create(ctx context.Context, p *model.Position) error {
	const qInsert = "INSERT INTO positions (name, description, created_by) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, p.Name, p.Description, p.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert position: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// GetByID fetches a position by its ID.
func (r *PositionRepo) GetByID(ctx context.Context, id uint64) (*model.Position, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+positionColumns+" FROM positions WHERE id = ?", id)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPositionNotFound
	}
	return p, err
}

// ListAll returns all positions ordered by name.
func (r *PositionRepo) ListAll(ctx context.Context) ([]*model.Position, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+positionColumns+" FROM positions ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a position.  Schedules store the post code, not the
// position id, so no dependent rows are touched.
func (r *PositionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM positions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func scanPosition(row rowScanner) (*model.Position, error) {
	var (
		p         model.Position
		desc      sql.NullString
		createdBy sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	if createdBy.Valid {
		v := uint64(createdBy.Int64)
		p.CreatedBy = &v
	}
	return &p, nil
}
