package usecase

import (
	"time"

	"RunRaiser/internal/domain"
)

// recorder appends trajectory steps with increasing numbers and non-decreasing UTC timestamps.
type recorder struct {
	now   func() time.Time
	steps []domain.TrajectoryStep
	last  time.Time
}

func newRecorder(now func() time.Time) *recorder {
	return &recorder{now: now, steps: make([]domain.TrajectoryStep, 0, totalSteps)}
}

func (r *recorder) record(name, description string, tools []string, notes map[string]any) {
	ts := r.now().UTC()
	if ts.Before(r.last) {
		ts = r.last
	}
	r.last = ts

	if tools == nil {
		tools = []string{}
	}
	r.steps = append(r.steps, domain.TrajectoryStep{
		StepNumber:  len(r.steps) + 1,
		StepName:    name,
		Timestamp:   ts,
		Description: description,
		ToolsUsed:   tools,
		Notes:       notes,
	})
}

func (r *recorder) log(sessionID, summary string) domain.TrajectoryLog {
	return domain.TrajectoryLog{
		SessionID:            sessionID,
		Steps:                r.steps,
		FinalDecisionSummary: summary,
	}
}
