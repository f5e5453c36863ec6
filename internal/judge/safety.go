package judge

import (
	"context"
	"fmt"
	"strings"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// SafetyGate wraps another judge and overrides its decision when a candidate
// contains a banned phrase (REJECT) or carries risk flags (REVISE).
type SafetyGate struct {
	inner  ports.Judge
	banned []string
}

var _ ports.Judge = (*SafetyGate)(nil)

// NewSafetyGate decorates inner with the banned phrase list.
func NewSafetyGate(inner ports.Judge, banned []string) *SafetyGate {
	cleaned := make([]string, 0, len(banned))
	for _, phrase := range banned {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			cleaned = append(cleaned, strings.ToLower(phrase))
		}
	}
	return &SafetyGate{inner: inner, banned: cleaned}
}

// Judge delegates scoring and then applies the safety checks.
func (g *SafetyGate) Judge(ctx context.Context, candidate domain.PostCandidate, platform domain.Platform) (domain.JudgeFeedback, error) {
	feedback, err := g.inner.Judge(ctx, candidate, platform)
	if err != nil {
		return domain.JudgeFeedback{}, err
	}

	lower := strings.ToLower(candidate.Text)
	for _, phrase := range g.banned {
		if strings.Contains(lower, phrase) {
			feedback.Decision = domain.DecisionReject
			feedback.Reasons = fmt.Sprintf("Contains banned phrase %q for %s.", phrase, platform)
			feedback.RequiredEdits = fmt.Sprintf("Remove %q.", phrase)
			return feedback, nil
		}
	}

	if len(candidate.RiskFlags) > 0 {
		feedback.Decision = domain.DecisionRevise
		feedback.Reasons = fmt.Sprintf("Candidate carries %d risk flag(s) for %s.", len(candidate.RiskFlags), platform)
		feedback.RequiredEdits = "Resolve: " + strings.Join(candidate.RiskFlags, ", ")
	}

	return feedback, nil
}
