package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrNotConfirmed, http.StatusForbidden},
		{service.ErrTaskNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", store.ErrCuratorNotFound), http.StatusNotFound},
		{store.ErrTaskIDTaken, http.StatusConflict},
		{fmt.Errorf("%w: name is required", domain.ErrValidation), http.StatusBadRequest},
		{service.ErrNoEligibleRecipients, http.StatusBadRequest},
		{&service.ServiceError{Service: "assignment", Operation: "create_task", Err: errors.New("x")},
			http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "validation failed: name is required",
		GetSafeErrorMessage(fmt.Errorf("%w: name is required", domain.ErrValidation)))
	assert.Equal(t, "User not found", GetSafeErrorMessage(store.ErrCuratorNotFound))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("pq: password authentication failed for user admin")))
}

func TestSanitizeValidationError(t *testing.T) {
	err := errors.New("Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'email' tag")
	assert.Equal(t, "Invalid Email: invalid email format", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
