// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditQueueName is the durable queue carrying AuthEvent messages.
const AuditQueueName = "auth.audit"

// Audit event types.
const (
	EventLoginSucceeded = "login.succeeded"
	EventLoginFailed    = "login.failed"
	EventLogout         = "logout"
	EventAccessDenied   = "access.denied"
)

// AuthEvent is published for every login, logout and role gate denial.
// Failed logins carry only the flow: neither the email nor the employee id
// the client typed is recorded.
type AuthEvent struct {
	Type       string  `json:"type"`
	Flow       string  `json:"flow,omitempty"`
	UserID     *uint64 `json:"user_id"`
	Reason     string  `json:"reason,omitempty"`
	Method     string  `json:"method,omitempty"`
	Route      string  `json:"route,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
