package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/observability"
	"github.com/MKabaja/SHIFTFlow/internal/queue"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// GateDeps are the audit sinks every role gate reports denials to.
type GateDeps struct {
	Log     logrus.FieldLogger
	Metrics *observability.Metrics
	Events  service.Publisher
}

// RoleGate returns a middleware admitting only users whose role is in
// roles.  Checks run in a fixed order: identity, role presence, allow-list
// configuration, membership.  An empty allow-list is a server bug and
// rejects every request with 500.
func RoleGate(deps GateDeps, roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Events == nil {
		deps.Events = service.NopPublisher{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			switch {
			case u == nil:
				return deny(deps, c, nil, service.Unauthorized())
			case !u.Role.Valid():
				return deny(deps, c, u, service.ErrNoRole)
			case len(allowed) == 0:
				return deny(deps, c, u, service.ErrMisconfiguredRoute)
			case !allowed[u.Role]:
				return deny(deps, c, u, service.ErrRoleNotAllowed)
			}
			return next(c)
		}
	}
}

// deny records the rejection and returns err for the error handler.
func deny(deps GateDeps, c echo.Context, u *model.User, err *service.Error) error {
	var uid *uint64
	fields := logrus.Fields{
		"reason": err.Kind.String(),
		"method": c.Request().Method,
		"route":  c.Path(),
	}
	if u != nil {
		id := u.ID
		uid = &id
		fields["user_id"] = id
		fields["role"] = string(u.Role)
	} else {
		fields["user_id"] = nil
	}
	if err.Kind == service.KindMisconfiguredRoute {
		deps.Log.WithFields(fields).Error("role gate: route has no allowed roles")
	} else {
		deps.Log.WithFields(fields).Warn("role gate: access denied")
	}
	deps.Metrics.RecordDenied(err.Kind.String())
	deps.Events.Publish(queue.AuthEvent{
		Type:       queue.EventAccessDenied,
		UserID:     uid,
		Reason:     err.Kind.String(),
		Method:     c.Request().Method,
		Route:      c.Path(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return err
}
