package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/skill-recommender/internal/types"
)

// SSEWriter writes Server-Sent Events for team runs. Every event carries an increasing id.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// NewSSEWriter sets the stream headers. It fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteMember sends one member's recommendations with its position in the team.
func (s *SSEWriter) WriteMember(index, total int, resp *types.RecommendationResponse) error {
	return s.WriteEvent("member", map[string]any{
		"index":          index,
		"total":          total,
		"recommendation": resp,
	})
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends the final event of a team run.
func (s *SSEWriter) WriteComplete(members int, status string) {
	s.WriteEvent("complete", map[string]any{ //nolint:errcheck
		"total_members": members,
		"status":        status,
	})
}
