package usecase

import (
	"context"
	"log/slog"
	"time"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Scheduler wires the periodic driver with the orchestrator use case.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	request      domain.PostRequest
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs of req.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, req domain.PostRequest, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, orchestrator: orchestrator, request: req, logger: logger}
}

// Start registers the run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.orchestrator.Run(ctx, s.request)
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run published",
			"trigger", trigger,
			"session_id", result.Trajectory.SessionID,
			"candidate_id", result.FinalPost.CandidateID)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
