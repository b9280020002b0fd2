package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run is a persisted recommendation run.
type Run struct {
	ID                 uuid.UUID       `json:"id"`
	MemberName         string          `json:"member_name"`
	Role               string          `json:"role"`
	RecommendationType string          `json:"recommendation_type"`
	Dynamic            bool            `json:"dynamic"`
	Status             string          `json:"status"`
	Request            json.RawMessage `json:"request,omitempty"`
	Response           json.RawMessage `json:"response,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

// RunStage is one recorded stage of a run.
type RunStage struct {
	Stage        string    `json:"stage"`
	Status       string    `json:"status"`
	DurationMS   int64     `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	MemberName string
	Status     string
	Limit      int
}

const defaultListLimit = 50
