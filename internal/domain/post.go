package domain

// PostCandidate is one proposed post, scored independently before selection.
type PostCandidate struct {
	CandidateID string   `json:"candidate_id"`
	Platform    Platform `json:"platform"`
	Text        string   `json:"text"`
	Rationale   string   `json:"rationale"`
	RiskFlags   []string `json:"risk_flags"`
}

// JudgeDecision is the verdict of the quality gate.
type JudgeDecision string

const (
	DecisionApprove JudgeDecision = "APPROVE"
	DecisionRevise  JudgeDecision = "REVISE"
	DecisionReject  JudgeDecision = "REJECT"
)

// JudgeFeedback is the quality gate result for exactly one candidate.
type JudgeFeedback struct {
	CandidateID   string        `json:"candidate_id"`
	Score         int           `json:"score_0_100"`
	Decision      JudgeDecision `json:"decision"`
	Reasons       string        `json:"reasons"`
	RequiredEdits string        `json:"required_edits,omitempty"`
}
