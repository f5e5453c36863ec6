package usecase

import (
	"context"
	"fmt"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

type judged struct {
	candidate domain.PostCandidate
	feedback  domain.JudgeFeedback
}

// selectBest judges candidates in order and keeps the highest score.
// Ties keep the earlier candidate.
func selectBest(ctx context.Context, judge ports.Judge, candidates []domain.PostCandidate, platform domain.Platform) (judged, map[string]int, error) {
	if len(candidates) == 0 {
		return judged{}, nil, domain.SelectionErrorf(stepQualityGate, "no candidates to score")
	}

	scores := make(map[string]int, len(candidates))
	var (
		best  judged
		found bool
	)
	for _, candidate := range candidates {
		feedback, err := judge.Judge(ctx, candidate, platform)
		if err != nil {
			return judged{}, nil, domain.CollaboratorError(stepQualityGate, fmt.Errorf("judge %s: %w", candidate.CandidateID, err))
		}
		if feedback.CandidateID != candidate.CandidateID {
			return judged{}, nil, domain.CollaboratorError(stepQualityGate,
				fmt.Errorf("judge returned feedback for %q while scoring %q", feedback.CandidateID, candidate.CandidateID))
		}
		if feedback.Score < 0 || feedback.Score > 100 {
			return judged{}, nil, domain.CollaboratorError(stepQualityGate,
				fmt.Errorf("judge score %d for %s is outside [0,100]", feedback.Score, candidate.CandidateID))
		}

		scores[candidate.CandidateID] = feedback.Score
		if !found || feedback.Score > best.feedback.Score {
			best = judged{candidate: candidate, feedback: feedback}
			found = true
		}
	}

	return best, scores, nil
}
