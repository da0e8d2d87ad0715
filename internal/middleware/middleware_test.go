package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/queue"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type capturePublisher struct{ events []queue.AuthEvent }

func (p *capturePublisher) Publish(ev queue.AuthEvent) { p.events = append(p.events, ev) }

// stubResolver maps fixed tokens onto users.
type stubResolver struct {
	users map[string]*model.User
	err   error
}

func (s stubResolver) Resolve(_ context.Context, raw string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[raw]; ok {
		return u, nil
	}
	return nil, service.ErrUnauthenticated
}
