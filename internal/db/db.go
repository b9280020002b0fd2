// Package db provides PostgreSQL persistence for recommendation runs and their stages.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/skill-recommender/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the run tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// StartRun creates a run record in the running state and returns its ID
func (db *DB) StartRun(ctx context.Context, req types.RecommendationRequest) (uuid.UUID, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO recommendation_runs (member_name, role, recommendation_type, dynamic, request, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		req.MemberName, req.Role, string(req.RecommendationType), req.Dynamic, reqJSON, types.RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// RecordStage stores the outcome of one stage. Re-recording a stage overwrites it.
func (db *DB) RecordStage(ctx context.Context, runID uuid.UUID, rec types.StageRecord) error {
	var errMsg *string
	if rec.Error != "" {
		errMsg = &rec.Error
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_stages (run_id, stage, status, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id, stage) DO UPDATE
		 SET status = EXCLUDED.status, duration_ms = EXCLUDED.duration_ms,
		     error_message = EXCLUDED.error_message, created_at = NOW()`,
		runID, rec.Stage, rec.Status, rec.DurationMS, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", rec.Stage, err)
	}
	return nil
}

// CompleteRun marks a run finished and stores its response
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, resp *types.RecommendationResponse) error {
	var respJSON []byte
	if resp != nil {
		var err error
		if respJSON, err = json.Marshal(resp); err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE recommendation_runs SET status = $1, response = $2, completed_at = NOW() WHERE id = $3`,
		status, respJSON, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

const runColumns = `id, member_name, role, recommendation_type, dynamic, status, request, response, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var request, response []byte
	if err := row.Scan(&run.ID, &run.MemberName, &run.Role, &run.RecommendationType, &run.Dynamic,
		&run.Status, &request, &response, &run.CreatedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	run.Request = request
	run.Response = response
	return &run, nil
}

// GetRun retrieves a run by ID. A missing run is (nil, nil).
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM recommendation_runs WHERE id = $1`, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs, newest first, with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	query, args := buildListRunsQuery(filters)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func buildListRunsQuery(filters RunFilters) (string, []any) {
	query := `SELECT ` + runColumns + ` FROM recommendation_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.MemberName != "" {
		query += fmt.Sprintf(" AND member_name ILIKE $%d", argNum)
		args = append(args, "%"+filters.MemberName+"%")
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

// ListRunStages returns the recorded stages of a run in the order they ran
func (db *DB) ListRunStages(ctx context.Context, runID uuid.UUID) ([]RunStage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT stage, status, duration_ms, error_message, created_at
		 FROM run_stages WHERE run_id = $1 ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run stages: %w", err)
	}
	defer rows.Close()

	stages := []RunStage{}
	for rows.Next() {
		var s RunStage
		if err := rows.Scan(&s.Stage, &s.Status, &s.DurationMS, &s.ErrorMessage, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// DeleteRun deletes a run and its stages (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM recommendation_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
