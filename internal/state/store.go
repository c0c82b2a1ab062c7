// Package state persists run history and learned aliases in a SQLite
// database under .wright/.
package state

import "time"

// RunStatus is the lifecycle state of a generation or deployment run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one invocation of generate or deploy.
type Run struct {
	ID          string
	Command     string
	Target      string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// ArtifactStatus is the outcome of a single pipeline object within a run.
type ArtifactStatus string

const (
	ArtifactRendered ArtifactStatus = "rendered"
	ArtifactExecuted ArtifactStatus = "executed"
	ArtifactFailed   ArtifactStatus = "failed"
	ArtifactSkipped  ArtifactStatus = "skipped"
)

// Artifact records one pipeline object produced or deployed by a run.
type Artifact struct {
	ID         string
	RunID      string
	Mart       string
	Object     string
	Layer      string
	Status     ArtifactStatus
	DurationMS int64
	Error      string
	CreatedAt  time.Time
}

// LearnedAlias is a fuzzy correction the normalizer accepted, persisted so
// later runs resolve the same misspelling without re-matching.
type LearnedAlias struct {
	Raw       string
	Canonical string
	SeenCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
