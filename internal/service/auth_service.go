package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/observability"
	"github.com/MKabaja/SHIFTFlow/internal/queue"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/utils"
)

// Credential flows, used as log field and metric label.
const (
	FlowPassword = "password"
	FlowPin      = "pin"
)

const (
	minPasswordLength = 6
	tokenType         = "bearer"
	logoutMessage     = "Logged out successfully"
)

// UserStore is the read side of the credential store.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AuthOptions carries the optional collaborators of AuthService.
type AuthOptions struct {
	// RejectInactive makes both login flows refuse users with is_active
	// false, with the same generic error as a wrong secret.
	RejectInactive bool
	// BcryptCost is used for the dummy hash compared against when a user
	// does not exist.  Zero means bcrypt.DefaultCost.
	BcryptCost int
	Metrics    *observability.Metrics
	Events     Publisher
	Log        logrus.FieldLogger
}

// AuthService orchestrates login, identity lookup and logout.
type AuthService struct {
	users          UserStore
	tokens         *TokenIssuer
	rejectInactive bool
	dummyHash      string
	metrics        *observability.Metrics
	events         Publisher
	log            logrus.FieldLogger
}

// NewAuthService wires the service.  It fails only if the dummy hash
// cannot be generated.
func NewAuthService(users UserStore, tokens *TokenIssuer, opts AuthOptions) (*AuthService, error) {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := utils.HashPassword("shiftflow-dummy-secret", cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	s := &AuthService{
		users:          users,
		tokens:         tokens,
		rejectInactive: opts.RejectInactive,
		dummyHash:      dummy,
		metrics:        opts.Metrics,
		events:         opts.Events,
		log:            opts.Log,
	}
	if s.events == nil {
		s.events = NopPublisher{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s, nil
}

// LoginWithPassword authenticates by email and password and issues a
// token valid for PasswordTokenTTL.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*model.LoginResult, error) {
	if fields := validatePasswordLogin(email, password); len(fields) > 0 {
		s.metrics.RecordLogin(FlowPassword, KindValidation.String())
		return nil, ValidationError(fields)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		// Keep the cost of an unknown email equal to a wrong password.
		utils.VerifyPassword(s.dummyHash, password)
		return nil, s.loginFailed(FlowPassword, msgInvalidPassword)
	case err != nil:
		s.metrics.RecordLogin(FlowPassword, "error")
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !utils.VerifyPassword(u.PasswordHash, password) || !s.allowed(u) {
		return nil, s.loginFailed(FlowPassword, msgInvalidPassword)
	}

	tok, err := s.tokens.IssueFor(u, PasswordTokenTTL)
	if err != nil {
		s.metrics.RecordLogin(FlowPassword, "error")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.loginSucceeded(FlowPassword, u.ID)
	return &model.LoginResult{
		AccessToken: tok.Token,
		TokenType:   tokenType,
		ExpiresIn:   int64(PasswordTokenTTL / time.Second),
		User: model.PasswordLoginUser{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			Role:  u.Role,
		},
	}, nil
}

// LoginWithPin authenticates by employee id and PIN and issues a token
// valid for PinTokenTTL.  employeeID is the textual form of the id as
// sent by the client.
func (s *AuthService) LoginWithPin(ctx context.Context, employeeID, pin string) (*model.LoginResult, error) {
	id, fields := validatePinLogin(employeeID, pin)
	if len(fields) > 0 {
		s.metrics.RecordLogin(FlowPin, KindValidation.String())
		return nil, ValidationError(fields)
	}

	u, err := s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		utils.VerifyPassword(s.dummyHash, pin)
		return nil, s.loginFailed(FlowPin, msgInvalidPin)
	case err != nil:
		s.metrics.RecordLogin(FlowPin, "error")
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !u.HasPin() {
		utils.VerifyPassword(s.dummyHash, pin)
		return nil, s.loginFailed(FlowPin, msgInvalidPin)
	}
	if !utils.VerifyPassword(*u.PinHash, pin) || !s.allowed(u) {
		return nil, s.loginFailed(FlowPin, msgInvalidPin)
	}

	tok, err := s.tokens.IssueFor(u, PinTokenTTL)
	if err != nil {
		s.metrics.RecordLogin(FlowPin, "error")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.loginSucceeded(FlowPin, u.ID)
	return &model.LoginResult{
		AccessToken: tok.Token,
		TokenType:   tokenType,
		ExpiresIn:   int64(PinTokenTTL / time.Second),
		User: model.PinLoginUser{
			ID:   u.ID,
			Name: u.Name,
			Role: u.Role,
		},
	}, nil
}

// CurrentIdentity returns the profile of an already resolved user.
func (s *AuthService) CurrentIdentity(u *model.User) model.Profile {
	return model.NewProfile(u)
}

// Resolve maps a raw bearer token onto its user.  Any token or subject
// problem is ErrUnauthenticated; store failures are returned wrapped.
func (s *AuthService) Resolve(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// LogoutResult is the body returned by a successful logout.
type LogoutResult struct {
	Message string `json:"message"`
}

// Logout revokes raw.  Revoking a token twice succeeds both times.
func (s *AuthService) Logout(ctx context.Context, raw string) (*LogoutResult, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.Invalidate(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogout()
	uid := claims.UserID
	s.events.Publish(queue.AuthEvent{Type: queue.EventLogout, UserID: &uid})
	s.log.WithField("user_id", uid).Info("logout")
	return &LogoutResult{Message: logoutMessage}, nil
}

// allowed applies the inactive-account policy.
func (s *AuthService) allowed(u *model.User) bool {
	return !s.rejectInactive || u.IsActive
}

// loginFailed records a failure without the submitted identifier.
func (s *AuthService) loginFailed(flow, msg string) error {
	s.metrics.RecordLogin(flow, KindInvalidCredentials.String())
	s.events.Publish(queue.AuthEvent{Type: queue.EventLoginFailed, Flow: flow})
	s.log.WithField("flow", flow).Info("login failed")
	return NewError(KindInvalidCredentials, msg)
}

func (s *AuthService) loginSucceeded(flow string, userID uint64) {
	s.metrics.RecordLogin(flow, "success")
	s.events.Publish(queue.AuthEvent{Type: queue.EventLoginSucceeded, Flow: flow, UserID: &userID})
	s.log.WithFields(logrus.Fields{"flow": flow, "user_id": userID}).Info("login succeeded")
}

func validatePasswordLogin(email, password string) map[string]string {
	fields := map[string]string{}
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		fields["email"] = "The email field is required."
	case !validEmail(email):
		fields["email"] = "The email must be a valid email address."
	}
	switch {
	case password == "":
		fields["password"] = "The password field is required."
	case len([]rune(password)) < minPasswordLength:
		fields["password"] = fmt.Sprintf("The password must be at least %d characters.", minPasswordLength)
	}
	return fields
}

func validatePinLogin(employeeID, pin string) (uint64, map[string]string) {
	fields := map[string]string{}
	var id uint64
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		fields["employee_id"] = "The employee id field is required."
	} else if n, err := strconv.ParseUint(employeeID, 10, 64); err != nil || n == 0 {
		fields["employee_id"] = "The employee id must be a positive integer."
	} else {
		id = n
	}
	switch {
	case pin == "":
		fields["pin"] = "The pin field is required."
	case len([]rune(pin)) < utils.MinPinLength:
		fields["pin"] = fmt.Sprintf("The pin must be at least %d characters.", utils.MinPinLength)
	}
	return id, fields
}

// validEmail accepts a bare RFC 5322 addr-spec, without display name.
func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
