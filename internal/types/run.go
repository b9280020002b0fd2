package types

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Stage statuses
const (
	StageStatusCompleted = "completed"
	StageStatusDegraded  = "degraded"
)

// StageRecord describes one finished pipeline stage.
type StageRecord struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
