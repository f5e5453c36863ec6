// Package resilience adds retry-with-backoff around collaborator ports.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Policy configures retries at a collaborator boundary.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (p Policy) normalize() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Enabled reports whether any retry would happen.
func (p Policy) Enabled() bool {
	return p.MaxRetries > 0
}

func newExecutor[R any](p Policy) failsafe.Executor[R] {
	p = p.normalize()
	policy := retrypolicy.NewBuilder[R]().
		WithBackoff(p.BaseDelay, p.MaxDelay).
		WithMaxRetries(p.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ R, err error) bool {
			return err != nil && ctxAlive(err)
		}).
		ReturnLastFailure().
		Build()
	return failsafe.With[R](policy)
}

func ctxAlive(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func call[R any](ctx context.Context, exec failsafe.Executor[R], fn func() (R, error)) (R, error) {
	return exec.WithContext(ctx).Get(fn)
}

type memoryStore struct {
	inner ports.MemoryStore
	get   failsafe.Executor[domain.FullMemory]
	put   failsafe.Executor[struct{}]
}

// MemoryStore retries Get and Put.
func MemoryStore(inner ports.MemoryStore, p Policy) ports.MemoryStore {
	if !p.Enabled() {
		return inner
	}
	return &memoryStore{inner: inner, get: newExecutor[domain.FullMemory](p), put: newExecutor[struct{}](p)}
}

func (m *memoryStore) Get(ctx context.Context) (domain.FullMemory, error) {
	return call(ctx, m.get, func() (domain.FullMemory, error) { return m.inner.Get(ctx) })
}

func (m *memoryStore) Put(ctx context.Context, mem domain.FullMemory) error {
	_, err := call(ctx, m.put, func() (struct{}, error) { return struct{}{}, m.inner.Put(ctx, mem) })
	return err
}

type activitySource struct {
	inner ports.ActivitySource
	exec  failsafe.Executor[domain.ActivitySummary]
}

// ActivitySource retries ActivitySummary.
func ActivitySource(inner ports.ActivitySource, p Policy) ports.ActivitySource {
	if !p.Enabled() {
		return inner
	}
	return &activitySource{inner: inner, exec: newExecutor[domain.ActivitySummary](p)}
}

func (a *activitySource) ActivitySummary(ctx context.Context) (domain.ActivitySummary, error) {
	return call(ctx, a.exec, func() (domain.ActivitySummary, error) { return a.inner.ActivitySummary(ctx) })
}

type fundraisingSource struct {
	inner ports.FundraisingSource
	exec  failsafe.Executor[domain.FundraisingSummary]
}

// FundraisingSource retries FundraisingSummary.
func FundraisingSource(inner ports.FundraisingSource, p Policy) ports.FundraisingSource {
	if !p.Enabled() {
		return inner
	}
	return &fundraisingSource{inner: inner, exec: newExecutor[domain.FundraisingSummary](p)}
}

func (f *fundraisingSource) FundraisingSummary(ctx context.Context) (domain.FundraisingSummary, error) {
	return call(ctx, f.exec, func() (domain.FundraisingSummary, error) { return f.inner.FundraisingSummary(ctx) })
}

type generator struct {
	inner ports.CandidateGenerator
	exec  failsafe.Executor[[]domain.PostCandidate]
}

// Generator retries Generate.
func Generator(inner ports.CandidateGenerator, p Policy) ports.CandidateGenerator {
	if !p.Enabled() {
		return inner
	}
	return &generator{inner: inner, exec: newExecutor[[]domain.PostCandidate](p)}
}

func (g *generator) Generate(ctx context.Context, req domain.PostRequest, activity domain.ActivitySummary, fundraising domain.FundraisingSummary) ([]domain.PostCandidate, error) {
	return call(ctx, g.exec, func() ([]domain.PostCandidate, error) {
		return g.inner.Generate(ctx, req, activity, fundraising)
	})
}

type judge struct {
	inner ports.Judge
	exec  failsafe.Executor[domain.JudgeFeedback]
}

// Judge retries Judge.
func Judge(inner ports.Judge, p Policy) ports.Judge {
	if !p.Enabled() {
		return inner
	}
	return &judge{inner: inner, exec: newExecutor[domain.JudgeFeedback](p)}
}

func (j *judge) Judge(ctx context.Context, candidate domain.PostCandidate, platform domain.Platform) (domain.JudgeFeedback, error) {
	return call(ctx, j.exec, func() (domain.JudgeFeedback, error) { return j.inner.Judge(ctx, candidate, platform) })
}

type publisher struct {
	inner ports.Publisher
	exec  failsafe.Executor[string]
}

// Publisher retries Publish. Only wrap publishers whose Publish is safe to repeat.
func Publisher(inner ports.Publisher, p Policy) ports.Publisher {
	if !p.Enabled() {
		return inner
	}
	return &publisher{inner: inner, exec: newExecutor[string](p)}
}

func (p *publisher) Publish(ctx context.Context, post domain.PostCandidate) (string, error) {
	return call(ctx, p.exec, func() (string, error) { return p.inner.Publish(ctx, post) })
}
