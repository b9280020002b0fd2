package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/skill-recommender/internal/config"
	"github.com/jonathan/skill-recommender/internal/parsing"
	"github.com/jonathan/skill-recommender/internal/team"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request validation", &ErrValidation{Field: "skills", Message: "required"}, http.StatusBadRequest},
		{"pipeline validation", &parsing.ValidationError{Field: "request", Message: "bad"}, http.StatusBadRequest},
		{"team row", &team.ValidationError{Row: 2, Field: "name", Message: "required"}, http.StatusBadRequest},
		{"wrapped team row", fmt.Errorf("ingest: %w", &team.ValidationError{Row: 1}), http.StatusBadRequest},
		{"not found", &ErrNotFound{Resource: "run", ID: "x"}, http.StatusNotFound},
		{"configuration", &config.ConfigurationError{Key: config.EnvAPIKey}, http.StatusServiceUnavailable},
		{"wrapped configuration", fmt.Errorf("start: %w", unavailable("DATABASE_URL", "run history")), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: format - unsupported", (&ErrValidation{Field: "format", Message: "unsupported"}).Error())
	assert.Equal(t, "run not found: abc", (&ErrNotFound{Resource: "run", ID: "abc"}).Error())
	assert.Equal(t, "configuration error: DATABASE_URL: run history is not configured", unavailable("DATABASE_URL", "run history").Error())
}
