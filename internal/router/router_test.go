package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKabaja/SHIFTFlow/internal/handler"
	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/observability"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/service"
	"github.com/MKabaja/SHIFTFlow/internal/utils"
)

type memUsers struct{ byID map[uint64]*model.User }

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) SetPinHash(_ context.Context, id uint64, h *string) error {
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PinHash = h
	return nil
}

type memRevocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memRevocations) Revoke(_ context.Context, jti string, _ uint64, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[jti] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[jti], nil
}

type memPositions struct{ rows []*model.Position }

func (m *memPositions) ListAll(context.Context) ([]*model.Position, error) { return m.rows, nil }

func (m *memPositions) Create(_ context.Context, p *model.Position) error {
	p.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, p)
	return nil
}

func (m *memPositions) Delete(context.Context, uint64) error { return repository.ErrPositionNotFound }

type memSchedules struct{}

func (memSchedules) Create(context.Context, *model.Schedule) error { return nil }
func (memSchedules) List(context.Context, repository.ScheduleFilter) ([]*model.Schedule, error) {
	return []*model.Schedule{}, nil
}
func (memSchedules) UpdateStatus(context.Context, uint64, model.ScheduleStatus) error { return nil }

type memAvailability struct{}

func (memAvailability) Upsert(context.Context, *model.Availability) error { return nil }
func (memAvailability) ListForUser(context.Context, uint64, string, string) ([]*model.Availability, error) {
	return []*model.Availability{}, nil
}
func (memAvailability) ListByDate(context.Context, string) ([]*model.Availability, error) {
	return []*model.Availability{}, nil
}

type testServer struct {
	e        *echo.Echo
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	pw, err := utils.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	pin, err := utils.HashPin("1234", bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{byID: map[uint64]*model.User{
		1: {ID: 1, Name: "Anna", Email: "anna@x.com", PasswordHash: pw, Role: model.RoleManager, IsActive: true},
		2: {ID: 2, Name: "Bartek", Email: "b@x.com", PasswordHash: pw, PinHash: pin, Role: model.RoleEmployee, IsActive: true},
		3: {ID: 3, Name: "Root", Email: "root@x.com", PasswordHash: pw, Role: model.RoleAdmin, IsActive: true},
	}}
	log, _ := logtest.NewNullLogger()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	issuer := service.NewTokenIssuer("test-secret", "shiftflow", &memRevocations{ids: map[string]bool{}})
	auth, err := service.NewAuthService(users, issuer, service.AuthOptions{
		BcryptCost: bcrypt.MinCost, Metrics: metrics, Log: log,
	})
	require.NoError(t, err)

	e := New(Deps{
		Auth:           handler.NewAuthHandler(auth),
		Positions:      handler.NewPositionHandler(&memPositions{}, nil, log),
		Schedules:      handler.NewScheduleHandler(memSchedules{}, users),
		Availabilities: handler.NewAvailabilityHandler(memAvailability{}),
		UserAdmin:      handler.NewUserAdminHandler(users, bcrypt.MinCost),
		Resolver:       auth,
		Gate:           middleware.GateDeps{Metrics: metrics},
		Log:            log,
		Metrics:        metrics,
		Gatherer:       registry,
	})
	return testServer{e: e, registry: registry}
}

func (s testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func (s testServer) login(t *testing.T, path, body string) string {
	t.Helper()
	rec := s.do(http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := decode(t, rec)["access_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestLoginMeLogout(t *testing.T) {
	s := newTestServer(t)
	tok := s.login(t, "/auth/login", `{"email":"anna@x.com","password":"secret1"}`)

	for _, path := range []string{"/auth/me", "/api/auth/me"} {
		rec := s.do(http.MethodGet, path, tok, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decode(t, rec)
		assert.Equal(t, "anna@x.com", body["email"])
		assert.Equal(t, "manager", body["role"])
	}

	rec := s.do(http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized.", decode(t, rec)["message"])

	rec = s.do(http.MethodPost, "/api/auth/logout", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode(t, rec)["message"])

	rec = s.do(http.MethodGet, "/auth/me", tok, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/logout", tok, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided", decode(t, rec)["message"])

	rec = s.do(http.MethodPost, "/auth/logout", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated.", decode(t, rec)["message"])
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	s := newTestServer(t)

	wrong := s.do(http.MethodPost, "/auth/login", "", `{"email":"anna@x.com","password":"wrong-pass"}`)
	unknown := s.do(http.MethodPost, "/auth/login", "", `{"email":"ghost@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusUnauthorized, wrong.Code, wrong.Body.String())
	require.Equal(t, http.StatusUnauthorized, unknown.Code, unknown.Body.String())
	assert.Equal(t, "Invalid Password or Email!", decode(t, wrong)["message"])
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	rec := s.do(http.MethodPost, "/auth/login", "", `{"email":"anna@x.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "password")

	rec = s.do(http.MethodPost, "/auth/login", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	rec = s.do(http.MethodPost, "/auth/login-pin", "", `{"employee_id":1,"pin":"1234"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid PIN or ID", decode(t, rec)["message"])
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	employee := s.login(t, "/auth/login-pin", `{"employee_id":"2","pin":"1234"}`)
	manager := s.login(t, "/api/auth/login", `{"email":"anna@x.com","password":"secret1"}`)
	admin := s.login(t, "/auth/login", `{"email":"root@x.com","password":"secret1"}`)

	rec := s.do(http.MethodPost, "/positions", employee, `{"name":"X1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Role not allowed", decode(t, rec)["message"])

	rec = s.do(http.MethodPost, "/api/positions", manager, `{"name":"X1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/positions", employee, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"X1"`)

	rec = s.do(http.MethodGet, "/positions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/schedules/me", employee, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/schedules", employee, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/schedules", manager, "").Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/availabilities", employee, `{"date":"2025-06-10"}`).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/availabilities", admin, `{"date":"2025-06-10"}`).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/users/2/pin", manager, `{"pin":"9999"}`).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/users/2/pin", admin, `{"pin":"9999"}`).Code)
	s.login(t, "/auth/login-pin", `{"employee_id":2,"pin":"9999"}`)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/auth/login", "", `{"email":"anna@x.com","password":"wrong-pass"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shiftflow_login_attempts_total{flow="password",outcome="invalid_credentials"} 1`)
	assert.Contains(t, rec.Body.String(), "shiftflow_http_requests_total")
}
