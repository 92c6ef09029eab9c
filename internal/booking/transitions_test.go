package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		requested string
		allowed   bool
	}{
		{"pending to confirmed", model.StatusPending, model.StatusConfirmed, true},
		{"pending to cancelled", model.StatusPending, model.StatusCancelled, true},
		{"pending to completed", model.StatusPending, model.StatusCompleted, false},
		{"confirmed to cancelled", model.StatusConfirmed, model.StatusCancelled, true},
		{"confirmed to completed", model.StatusConfirmed, model.StatusCompleted, true},
		{"confirmed to pending", model.StatusConfirmed, model.StatusPending, false},
		{"cancelled is terminal", model.StatusCancelled, model.StatusPending, false},
		{"cancelled cannot be confirmed", model.StatusCancelled, model.StatusConfirmed, false},
		{"completed is terminal", model.StatusCompleted, model.StatusCancelled, false},
		{"unknown status has no edges", "unknown", model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, canTransition(tt.current, tt.requested))
		})
	}
}

func TestAuthorizeTransition(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		isOwner   bool
		current   string
		requested string
		wantErr   error
	}{
		{"owner cancels pending", model.RoleUser, true, model.StatusPending, model.StatusCancelled, nil},
		{"owner cancels confirmed", model.RoleUser, true, model.StatusConfirmed, model.StatusCancelled, nil},
		{"owner cannot confirm", model.RoleUser, true, model.StatusPending, model.StatusConfirmed, repository.ErrForbidden},
		{"owner cannot complete", model.RoleUser, true, model.StatusConfirmed, model.StatusCompleted, repository.ErrInvalidTransition},
		{"non-owner is rejected", model.RoleUser, false, model.StatusPending, model.StatusCancelled, repository.ErrForbidden},
		{"owner blocked on cancelled", model.RoleUser, true, model.StatusCancelled, model.StatusPending, repository.ErrInvalidState},
		{"owner blocked on completed", model.RoleUser, true, model.StatusCompleted, model.StatusCancelled, repository.ErrInvalidState},
		{"admin confirms pending", model.RoleAdmin, false, model.StatusPending, model.StatusConfirmed, nil},
		{"admin completes confirmed", model.RoleAdmin, false, model.StatusConfirmed, model.StatusCompleted, nil},
		{"admin cancels confirmed", model.RoleAdmin, false, model.StatusConfirmed, model.StatusCancelled, nil},
		{"admin bound by graph", model.RoleAdmin, false, model.StatusCancelled, model.StatusConfirmed, repository.ErrInvalidTransition},
		{"admin cannot revive completed", model.RoleAdmin, false, model.StatusCompleted, model.StatusPending, repository.ErrInvalidTransition},
		{"admin cannot skip pending to completed", model.RoleAdmin, false, model.StatusPending, model.StatusCompleted, repository.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizeTransition(tt.role, tt.isOwner, tt.current, tt.requested)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in      string
		out     string
		wantErr bool
	}{
		{"19:00", "19:00", false},
		{"9:30", "09:30", false},
		{"0:05", "00:05", false},
		{"23:59", "23:59", false},
		{"24:00", "", true},
		{"19:60", "", true},
		{"7pm", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeTime(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, repository.ErrInvalidInput, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.out, got)
		}
	}
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, validateDate("2026-09-01"))
	assert.ErrorIs(t, validateDate("2026-13-01"), repository.ErrInvalidInput)
	assert.ErrorIs(t, validateDate("01-09-2026"), repository.ErrInvalidInput)
	assert.ErrorIs(t, validateDate("tomorrow"), repository.ErrInvalidInput)
}
