package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
)

// newTestEcho returns an echo instance wired with ErrorHandler and the
// hook capturing what it logs.
func newTestEcho() (*echo.Echo, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(log)
	return e, hook
}

// asUser attaches u before h runs, standing in for the auth middleware.
func asUser(u *model.User, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if u != nil {
			middleware.SetUser(c, u)
		}
		return h(c)
	}
}

func newRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	return serve(e, newRequest(method, path, body))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}
