package ports

import (
	"context"
	"time"

	"RunRaiser/internal/domain"
)

// MemoryStore loads and persists the campaign memory between runs.
type MemoryStore interface {
	Get(ctx context.Context) (domain.FullMemory, error)
	Put(ctx context.Context, memory domain.FullMemory) error
}

// ActivitySource returns the latest running activity snapshot.
type ActivitySource interface {
	ActivitySummary(ctx context.Context) (domain.ActivitySummary, error)
}

// FundraisingSource returns the current fundraising progress snapshot.
type FundraisingSource interface {
	FundraisingSummary(ctx context.Context) (domain.FundraisingSummary, error)
}

// CandidateGenerator drafts an ordered set of candidate posts.
type CandidateGenerator interface {
	Generate(ctx context.Context, req domain.PostRequest, activity domain.ActivitySummary, fundraising domain.FundraisingSummary) ([]domain.PostCandidate, error)
}

// Judge scores a single candidate for the target platform.
type Judge interface {
	Judge(ctx context.Context, candidate domain.PostCandidate, platform domain.Platform) (domain.JudgeFeedback, error)
}

// Publisher sends the selected post and returns a confirmation line.
type Publisher interface {
	Publish(ctx context.Context, post domain.PostCandidate) (string, error)
}

// MemoryUpdater records the published post in memory.
type MemoryUpdater interface {
	Update(ctx context.Context, memory domain.FullMemory, post domain.PostCandidate) (string, error)
}

// RunObserver receives run-level measurements (metrics, audit).
type RunObserver interface {
	ObserveRun(outcome string, elapsed time.Duration)
	ObserveScore(platform domain.Platform, score int)
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
