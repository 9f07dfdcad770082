package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainiac5/brainiac-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())

	cause := errors.New("disk I/O error")
	wrapped := err.WithCause(cause)
	assert.Contains(t, wrapped.Error(), "not found")
	assert.Contains(t, wrapped.Error(), "disk I/O error")
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestError_IsMatchesByCode(t *testing.T) {
	refined := store.ErrNotFound.WithMessagef("idea %q not found", "idea-1")

	assert.Equal(t, `idea "idea-1" not found`, refined.Message)
	assert.ErrorIs(t, refined, store.ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("get idea: %w", refined), store.ErrNotFound)
	assert.NotErrorIs(t, refined, store.ErrAlreadyExists)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *store.Error
		wantCode int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"invalid input", store.ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.HTTPCode())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
