package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKabaja/SHIFTFlow/internal/repository"
)

type memPins map[uint64]*string

func (m memPins) SetPinHash(_ context.Context, id uint64, h *string) error {
	if _, ok := m[id]; !ok {
		return repository.ErrUserNotFound
	}
	m[id] = h
	return nil
}

func TestSetPin(t *testing.T) {
	old := "old"
	pins := memPins{1: &old}
	e, _ := newTestEcho()
	e.PUT("/users/:id/pin", NewUserAdminHandler(pins, bcrypt.MinCost).SetPin)

	rec := doJSON(e, http.MethodPut, "/users/1/pin", `{"pin":"4321"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PIN updated", decode(t, rec)["message"])
	require.NotNil(t, pins[1])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*pins[1]), []byte("4321")))

	rec = doJSON(e, http.MethodPut, "/users/1/pin", `{"pin":"12"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "pin")

	rec = doJSON(e, http.MethodPut, "/users/1/pin", `{"pin":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PIN cleared", decode(t, rec)["message"])
	assert.Nil(t, pins[1])

	rec = doJSON(e, http.MethodPut, "/users/8/pin", `{"pin":"4321"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}
