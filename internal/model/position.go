package model

import "time"

// Position is a job post in the mine (e.g. B1 – Ticketing Officer 1).
// It corresponds to a row in the `positions` table.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique short code.
//	Description – explanation of the code, nullable.
//	CreatedBy   – manager who created the position, nil for seeded rows.
type Position struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   *uint64   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
