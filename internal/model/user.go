package model

import (
	"regexp"
	"time"
)

// Role is the closed set of staff roles.  Authorization decisions are
// made on this value alone.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// AllRoles lists every role, in ascending privilege.
var AllRoles = []Role{RoleEmployee, RoleManager, RoleAdmin}

// ParseRole maps a stored role name onto the enum.  Unknown or empty
// values report false and yield the zero Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// ContractType mirrors users.contract_type.
type ContractType string

const (
	ContractUOP      ContractType = "uop"
	ContractZlecenie ContractType = "zlecenie"
)

// User represents a staff account as stored in the `users` table.
//
// Fields:
//
//	ID               – primary key, immutable.
//	Email            – unique login identifier for the password flow.
//	PasswordHash     – bcrypt hash of the password; never serialized.
//	PinHash          – bcrypt hash of the quick-login PIN; nil when unset.
//	Role             – employee, manager or admin.
//	IsActive         – administrative on/off switch.
//	Positions        – job titles the employee can work.
//	HourlyRate       – DECIMAL(8,2) pay rate; empty when unknown.
//	MaxHoursPerMonth – contract cap, nil when not set.
//	MinBreakHours    – minimum rest between shifts.
//	ContractType     – uop or zlecenie.
type User struct {
	ID               uint64
	Name             string
	Email            string
	PasswordHash     string
	PinHash          *string
	Role             Role
	IsActive         bool
	Positions        []string
	HourlyRate       Decimal
	MaxHoursPerMonth *uint16
	MinBreakHours    uint16
	ContractType     ContractType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPin reports whether a PIN hash is configured for the user.
func (u *User) HasPin() bool {
	return u.PinHash != nil && *u.PinHash != ""
}

// Decimal carries a SQL DECIMAL value in its textual form so no precision
// is lost between MySQL and the JSON response.  The empty value encodes
// as null.
type Decimal string

// decimalPattern matches what a DECIMAL(8,2) column stores.
var decimalPattern = regexp.MustCompile(`^\d{1,6}(\.\d{1,2})?$`)

// ValidDecimal reports whether s is a plain non-negative decimal that fits
// DECIMAL(8,2).
func ValidDecimal(s string) bool {
	return decimalPattern.MatchString(s)
}

// MarshalJSON writes the decimal as a bare JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return []byte(d), nil
}
