package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKabaja/SHIFTFlow/internal/model"
)

type memAvailability struct {
	last     *model.Availability
	from, to string
	date     string
}

func (m *memAvailability) Upsert(_ context.Context, a *model.Availability) error {
	m.last = a
	return nil
}

func (m *memAvailability) ListForUser(_ context.Context, _ uint64, from, to string) ([]*model.Availability, error) {
	m.from, m.to = from, to
	return []*model.Availability{}, nil
}

func (m *memAvailability) ListByDate(_ context.Context, date string) ([]*model.Availability, error) {
	m.date = date
	return []*model.Availability{}, nil
}

func TestAvailabilityHandler(t *testing.T) {
	store := &memAvailability{}
	h := NewAvailabilityHandler(store)
	emp := &model.User{ID: 4, Role: model.RoleEmployee}
	e, _ := newTestEcho()
	e.PUT("/availabilities", asUser(emp, h.Declare))
	e.GET("/availabilities/me", asUser(emp, h.Mine))
	e.GET("/availabilities", h.ByDate)

	rec := doJSON(e, http.MethodPut, "/availabilities", `{"date":"2025-06-10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.last.IsAvailable)
	assert.Equal(t, uint64(4), store.last.UserID)

	rec = doJSON(e, http.MethodPut, "/availabilities", `{"date":"2025-06-11","is_available":false,"notes":"exam"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.last.IsAvailable)
	assert.Equal(t, "exam", *store.last.Notes)

	rec = doJSON(e, http.MethodPut, "/availabilities", `{"date":"tomorrow"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodGet, "/availabilities/me?from=2025-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-06-01", store.from)
	assert.Empty(t, store.to)

	rec = doJSON(e, http.MethodGet, "/availabilities?date=2025-06-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-06-10", store.date)

	rec = doJSON(e, http.MethodGet, "/availabilities", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
