package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/skill-recommender/internal/config"
	"github.com/jonathan/skill-recommender/internal/parsing"
	"github.com/jonathan/skill-recommender/internal/team"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr   *ErrValidation
		parseErr *parsing.ValidationError
		teamErr  *team.ValidationError
		notFound *ErrNotFound
		cfgErr   *config.ConfigurationError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &parseErr), errors.As(err, &teamErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func unavailable(key, what string) error {
	return &config.ConfigurationError{Key: key, Message: what + " is not configured"}
}
