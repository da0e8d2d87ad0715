package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/utils"
)

// UserRepo is the credential store: it reads users and their hashed
// secrets from the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,pin_hashed,role,is_active,positions,hourly_rate," +
	"max_hours_per_month,min_break_hours,contract_type,created_at,updated_at"

// NewUser carries the fields needed to create an account.  Password and
// Pin are plain text; they are hashed with independent salts on insert.
type NewUser struct {
	Name         string
	Email        string
	Password     string
	Pin          string
	Role         model.Role
	Positions    []string
	HourlyRate   string
	ContractType model.ContractType
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, nu NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	pinHash, err := utils.HashPin(nu.Pin, cost)
	if err != nil {
		return 0, err
	}
	role := nu.Role
	if role == "" {
		role = model.RoleEmployee
	}
	contract := nu.ContractType
	if contract == "" {
		contract = model.ContractUOP
	}
	var positions any
	if len(nu.Positions) > 0 {
		b, err := json.Marshal(nu.Positions)
		if err != nil {
			return 0, err
		}
		positions = string(b)
	}
	var rate sql.NullString
	if nu.HourlyRate != "" {
		rate = sql.NullString{String: nu.HourlyRate, Valid: true}
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, pin_hashed, role, positions, hourly_rate, contract_type) VALUES (?,?,?,?,?,?,?,?)",
		nu.Name, email, hash, pinHash, string(role), positions, rate, string(contract))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// SetPinHash replaces the user's PIN hash.  A nil hash clears the PIN.
func (r *UserRepo) SetPinHash(ctx context.Context, id uint64, pinHash *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET pin_hashed=?, updated_at=NOW() WHERE id=?", pinHash, id)
	if err != nil {
		return fmt.Errorf("update pin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		pin       sql.NullString
		role      string
		positions []byte
		rate      sql.NullString
		maxHours  sql.NullInt32
		contract  string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &pin, &role, &u.IsActive,
		&positions, &rate, &maxHours, &u.MinBreakHours, &contract, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if pin.Valid {
		u.PinHash = &pin.String
	}
	// An unknown role is kept empty so the role gate reports it as missing.
	u.Role, _ = model.ParseRole(role)
	if len(positions) > 0 {
		if err := json.Unmarshal(positions, &u.Positions); err != nil {
			return nil, fmt.Errorf("decode positions: %w", err)
		}
	}
	if rate.Valid {
		u.HourlyRate = model.Decimal(rate.String)
	}
	if maxHours.Valid {
		h := uint16(maxHours.Int32)
		u.MaxHoursPerMonth = &h
	}
	u.ContractType = model.ContractType(contract)
	return &u, nil
}
