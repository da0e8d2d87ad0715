package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/observability"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

// RequestLog logs one line per request and feeds the HTTP metrics.  The
// status of a returned error is taken from its type since echo writes
// the response only after the chain unwinds.
func RequestLog(log logrus.FieldLogger, m *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			elapsed := time.Since(start)

			if m != nil {
				m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
				m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
			}

			entry := log.WithFields(logrus.Fields{
				"method":     method,
				"route":      route,
				"status":     status,
				"latency_ms": elapsed.Milliseconds(),
				"user_id":    userID(c),
			})
			if status >= http.StatusInternalServerError {
				entry.Error("request")
			} else {
				entry.Info("request")
			}
			return err
		}
	}
}

func statusOf(err error) int {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Kind.Status()
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
