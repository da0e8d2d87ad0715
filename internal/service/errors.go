package service

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an authentication or authorization failure.  Each kind
// maps to exactly one HTTP status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindInvalidCredentials
	KindMissingToken
	KindUnauthenticated
	KindNoRole
	KindMisconfiguredRoute
	KindRoleNotAllowed
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials, KindMissingToken, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNoRole, KindRoleNotAllowed:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindMissingToken:
		return "missing_token"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNoRole:
		return "no_role"
	case KindMisconfiguredRoute:
		return "misconfigured_route"
	case KindRoleNotAllowed:
		return "role_not_allowed"
	}
	return "unknown"
}

// Error is the typed failure returned by the auth core.  Message is safe
// to show to clients; Fields holds per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNoRole)
// holds regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks; the messages are the client-facing ones.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "The given data was invalid."}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: msgInvalidPassword}
	ErrMissingToken       = &Error{Kind: KindMissingToken, Message: "No token provided"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Unauthenticated."}
	ErrNoRole             = &Error{Kind: KindNoRole, Message: "User has no role"}
	ErrMisconfiguredRoute = &Error{Kind: KindMisconfiguredRoute, Message: "Middleware roles are not defined"}
	ErrRoleNotAllowed     = &Error{Kind: KindRoleNotAllowed, Message: "Role not allowed"}
)

// Login failure messages differ per flow.
const (
	msgInvalidPassword = "Invalid Password or Email!"
	msgInvalidPin      = "Invalid PIN or ID"
	msgUnauthorized    = "Unauthorized."
)

// NewError builds an error of kind k with a custom message.
func NewError(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// ValidationError builds a validation failure from per-field messages.
func ValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, Fields: fields}
}

// Unauthorized is the role gate's response to a request without identity.
func Unauthorized() *Error {
	return NewError(KindUnauthenticated, msgUnauthorized)
}
