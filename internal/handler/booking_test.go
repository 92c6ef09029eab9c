package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

func TestBookingErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"booking not found", repository.ErrBookingNotFound, http.StatusNotFound},
		{"restaurant not found", repository.ErrRestaurantNotFound, http.StatusNotFound},
		{"table not found", repository.ErrTableNotFound, http.StatusNotFound},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden},
		{"slot conflict", repository.ErrConflict, http.StatusConflict},
		{"invalid transition", repository.ErrInvalidTransition, http.StatusConflict},
		{"capacity exceeded", repository.ErrCapacityExceeded, http.StatusBadRequest},
		{"terminal state", repository.ErrInvalidState, http.StatusBadRequest},
		{"invalid input", repository.ErrInvalidInput, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			assert.NoError(t, bookingError(c, tt.err))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	newCtx := func(v interface{}) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if v != nil {
			c.Set("user_id", v)
		}
		return c
	}

	id, err := getUserID(newCtx(uint64(7)))
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	// JWT numeric claims decode as float64.
	id, err = getUserID(newCtx(float64(12)))
	assert.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	id, err = getUserID(newCtx("42"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = getUserID(newCtx(nil))
	assert.Error(t, err)

	_, err = getUserID(newCtx("not-a-number"))
	assert.Error(t, err)
}
