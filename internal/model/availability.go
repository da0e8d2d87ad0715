package model

import "time"

// Availability is an employee's declaration for one day: true means the
// employee wants to work, false means vacation or off.  A user has at most
// one declaration per date.
type Availability struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"user_id"`
	Date           string    `json:"date"`
	IsAvailable    bool      `json:"is_available"`
	SubmissionDate *string   `json:"submission_date"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
