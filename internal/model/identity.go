package model

// The types below are the only user shapes that leave the service.  None of
// them carries a password or PIN hash.

// PasswordLoginUser is the identity returned by the password login flow.
type PasswordLoginUser struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// PinLoginUser is the identity returned by the PIN login flow.  The email
// is left out on purpose: the PIN flow runs on shared terminals.
type PinLoginUser struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Profile is the "who am I" projection.
type Profile struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       Role     `json:"role"`
	Positions  []string `json:"positions"`
	Status     bool     `json:"status"`
	HourlyRate Decimal  `json:"hourly_rate"`
}

// NewProfile builds the profile projection of u.
func NewProfile(u *User) Profile {
	positions := u.Positions
	if positions == nil {
		positions = []string{}
	}
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Positions:  positions,
		Status:     u.IsActive,
		HourlyRate: u.HourlyRate,
	}
}

// LoginResult is the body of a successful login response.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        any    `json:"user"`
}
