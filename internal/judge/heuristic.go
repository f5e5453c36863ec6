// Package judge implements the quality gate that scores candidate posts.
package judge

import (
	"context"
	"fmt"
	"strings"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Bonus adds Points when Phrase appears in the candidate text (case-insensitive).
type Bonus struct {
	Phrase string `yaml:"phrase"`
	Points int    `yaml:"points"`
}

// Rubric parameterises the heuristic scorer.
type Rubric struct {
	BaseScore int     `yaml:"baseScore"`
	MaxScore  int     `yaml:"maxScore"`
	Bonuses   []Bonus `yaml:"bonuses"`
}

// DefaultRubric: base 80, two +5 bonuses, capped at 95.
func DefaultRubric() Rubric {
	return Rubric{
		BaseScore: 80,
		MaxScore:  95,
		Bonuses: []Bonus{
			{Phrase: "smashed", Points: 5},
			{Phrase: "please consider donating", Points: 5},
		},
	}
}

// Heuristic is a deterministic stand-in for a model-backed judge.
type Heuristic struct {
	rubric Rubric
}

var _ ports.Judge = (*Heuristic)(nil)

// NewHeuristic builds a judge from rubric; a zero MaxScore means 100.
func NewHeuristic(rubric Rubric) *Heuristic {
	if rubric.MaxScore <= 0 || rubric.MaxScore > 100 {
		rubric.MaxScore = 100
	}
	return &Heuristic{rubric: rubric}
}

// Judge scores the candidate and always approves it.
func (h *Heuristic) Judge(_ context.Context, candidate domain.PostCandidate, platform domain.Platform) (domain.JudgeFeedback, error) {
	return domain.JudgeFeedback{
		CandidateID: candidate.CandidateID,
		Score:       h.Score(candidate.Text),
		Decision:    domain.DecisionApprove,
		Reasons: fmt.Sprintf("Tone appropriate for %s, clear gratitude and impact, no obvious brand or sensitivity issues.",
			platform),
	}, nil
}

// Score returns the rubric score of text, clamped to [0, MaxScore].
func (h *Heuristic) Score(text string) int {
	lower := strings.ToLower(text)
	score := h.rubric.BaseScore
	for _, bonus := range h.rubric.Bonuses {
		if bonus.Phrase != "" && strings.Contains(lower, strings.ToLower(bonus.Phrase)) {
			score += bonus.Points
		}
	}
	return clamp(score, 0, h.rubric.MaxScore)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
