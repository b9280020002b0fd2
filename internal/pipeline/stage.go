package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Stage is a step of a recommendation run. Runs move through stages strictly in order.
type Stage int

// Stages
const (
	StageStart Stage = iota
	StageAnalyzeRole
	StageFetchTrends
	StageGapAnalysis
	StageContextRetrieval
	StageGeneration
	StageValidation
	StageDone
)

var stageNames = [...]string{
	StageStart:            "start",
	StageAnalyzeRole:      "analyze_role",
	StageFetchTrends:      "fetch_trends",
	StageGapAnalysis:      "gap_analysis",
	StageContextRetrieval: "context_retrieval",
	StageGeneration:       "generation",
	StageValidation:       "validation_and_ranking",
	StageDone:             "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Next returns the stage that follows s. Dynamic runs fetch live trends in place of
// the plain role analysis; every other transition is shared by both variants.
func Next(s Stage, dynamic bool) Stage {
	switch s {
	case StageStart:
		if dynamic {
			return StageFetchTrends
		}
		return StageAnalyzeRole
	case StageAnalyzeRole, StageFetchTrends:
		return StageGapAnalysis
	case StageGapAnalysis:
		return StageContextRetrieval
	case StageContextRetrieval:
		return StageGeneration
	case StageGeneration:
		return StageValidation
	default:
		return StageDone
	}
}

// Recorder persists run progress. Recording failures never affect the run.
type Recorder interface {
	StartRun(ctx context.Context, req types.RecommendationRequest) (uuid.UUID, error)
	RecordStage(ctx context.Context, runID uuid.UUID, rec types.StageRecord) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, resp *types.RecommendationResponse) error
}

// NopRecorder hands out run IDs and stores nothing.
type NopRecorder struct{}

// StartRun returns a fresh ID.
func (NopRecorder) StartRun(context.Context, types.RecommendationRequest) (uuid.UUID, error) {
	return uuid.New(), nil
}

// RecordStage does nothing.
func (NopRecorder) RecordStage(context.Context, uuid.UUID, types.StageRecord) error { return nil }

// CompleteRun does nothing.
func (NopRecorder) CompleteRun(context.Context, uuid.UUID, string, *types.RecommendationResponse) error {
	return nil
}

func startRun(ctx context.Context, r Recorder, req types.RecommendationRequest) uuid.UUID {
	id, err := r.StartRun(ctx, req)
	if err != nil {
		log.Printf("[PIPELINE] Warning: failed to record run start: %v", err)
		return uuid.New()
	}
	return id
}
