// Package store persists the JSON artifacts produced at each stage
// boundary, keyed by company. Every stage loads its input artifact and
// saves its output artifact, so stages can be re-run independently.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Kind names one stage-boundary artifact.
type Kind string

const (
	KindDeckFacts         Kind = "deck_facts"
	KindResearchPlan      Kind = "research_plan"
	KindResearchResults   Kind = "research_results"
	KindValidationPlan    Kind = "validation_plan"
	KindValidationResults Kind = "validation_results"
	KindReport            Kind = "validation_report"
)

// RunStatus tracks a pipeline run's lifecycle.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// Run records one pipeline invocation.
type Run struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	Status         RunStatus `json:"status"`
	Recommendation string    `json:"recommendation,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ErrNotFound is returned when the requested artifact or run does not
// exist. Callers branch on it: a missing input artifact means the
// prior stage has not been run.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface for pipeline artifacts and runs.
type Store interface {
	// Artifacts. Save upserts the latest artifact of each kind per
	// company; Load unmarshals it into out.
	SaveArtifact(ctx context.Context, company string, kind Kind, v any) error
	LoadArtifact(ctx context.Context, company string, kind Kind, out any) error
	ListArtifacts(ctx context.Context, company string) ([]Kind, error)

	// Runs.
	CreateRun(ctx context.Context, company string) (*Run, error)
	FinishRun(ctx context.Context, runID string, status RunStatus, recommendation string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
