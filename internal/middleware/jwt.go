package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// Resolver maps a bearer token onto its user.  service.AuthService
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*model.User, error)
}

// Authenticate resolves the bearer token, if any, and attaches the user to
// the context.  It never rejects a request for a missing or invalid token:
// that decision belongs to RoleGate, which runs next.  Errors from the
// stores behind the resolver abort the request.
func Authenticate(r Resolver, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := service.ExtractToken(c.Request())
			if !ok {
				return next(c)
			}
			u, err := r.Resolve(c.Request().Context(), raw)
			if err != nil {
				var se *service.Error
				if errors.As(err, &se) {
					return next(c)
				}
				log.WithError(err).Error("resolve token")
				return err
			}
			SetUser(c, u)
			return next(c)
		}
	}
}
