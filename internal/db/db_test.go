package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-recommender/internal/pipeline"
)

var _ pipeline.Recorder = (*DB)(nil)

func TestBuildListRunsQuery(t *testing.T) {
	query, args := buildListRunsQuery(RunFilters{Limit: 10})
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $1")
	assert.Equal(t, []any{10}, args)

	query, args = buildListRunsQuery(RunFilters{MemberName: "ali", Status: "completed", Limit: 5})
	assert.Contains(t, query, "member_name ILIKE $1")
	assert.Contains(t, query, "status = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []any{"%ali%", "completed", 5}, args)
}

func TestSchemaDefinesTables(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS recommendation_runs")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS run_stages")
	assert.Contains(t, schemaSQL, "UNIQUE (run_id, stage)")
}

func TestRun_JSONOmitsEmptyPayloads(t *testing.T) {
	data, err := json.Marshal(Run{MemberName: "Alice", Status: "running"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "completed_at")
	assert.NotContains(t, string(data), `"response"`)
}
