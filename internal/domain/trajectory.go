package domain

import "time"

// TrajectoryStep is one append-only entry of a run's execution trace.
type TrajectoryStep struct {
	StepNumber  int            `json:"step_number"`
	StepName    string         `json:"step_name"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	ToolsUsed   []string       `json:"tools_used"`
	Notes       map[string]any `json:"notes,omitempty"`
}

// TrajectoryLog is the full execution trace of a single session.
type TrajectoryLog struct {
	SessionID            string           `json:"session_id"`
	Steps                []TrajectoryStep `json:"steps"`
	FinalDecisionSummary string           `json:"final_decision_summary"`
}
