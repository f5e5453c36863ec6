package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/generator"
	"RunRaiser/internal/infrastructure/simulated"
	"RunRaiser/internal/infrastructure/storage"
	"RunRaiser/internal/judge"
	"RunRaiser/internal/memory"
)

func milestoneRequest() domain.PostRequest {
	return domain.PostRequest{
		TargetPlatform:   domain.PlatformLinkedIn,
		Tone:             domain.ToneProfessional,
		Objective:        "Celebrate hitting the £500+ fundraising milestone and encourage further support.",
		Audience:         "Corporate partners and professional network",
		CallToActionHint: "Invite colleagues and partners to donate or share the campaign.",
	}
}

type spyPublisher struct {
	calls []domain.PostCandidate
}

func (p *spyPublisher) Publish(ctx context.Context, post domain.PostCandidate) (string, error) {
	p.calls = append(p.calls, post)
	return simulated.NewPublisher(0).Publish(ctx, post)
}

type fixedGenerator struct {
	candidates []domain.PostCandidate
	err        error
}

func (g fixedGenerator) Generate(context.Context, domain.PostRequest, domain.ActivitySummary, domain.FundraisingSummary) ([]domain.PostCandidate, error) {
	return g.candidates, g.err
}

type scriptedJudge struct {
	scores    map[string]int
	decisions map[string]domain.JudgeDecision
	order     []string
}

func (j *scriptedJudge) Judge(_ context.Context, c domain.PostCandidate, _ domain.Platform) (domain.JudgeFeedback, error) {
	j.order = append(j.order, c.CandidateID)
	decision := domain.DecisionApprove
	if d, ok := j.decisions[c.CandidateID]; ok {
		decision = d
	}
	return domain.JudgeFeedback{CandidateID: c.CandidateID, Score: j.scores[c.CandidateID], Decision: decision, Reasons: "scripted"}, nil
}

type failingFundraising struct{}

func (failingFundraising) FundraisingSummary(context.Context) (domain.FundraisingSummary, error) {
	return domain.FundraisingSummary{}, errors.New("upstream timeout")
}

type observedRun struct {
	outcome string
	scores  []int
}

func (o *observedRun) ObserveRun(outcome string, _ time.Duration) { o.outcome = outcome }
func (o *observedRun) ObserveScore(_ domain.Platform, score int)  { o.scores = append(o.scores, score) }

type fixture struct {
	deps      OrchestratorDeps
	store     *storage.InProcessStore
	publisher *spyPublisher
	observer  *observedRun
}

func newFixture() *fixture {
	now := func() time.Time { return time.Date(2025, time.November, 28, 7, 0, 0, 0, time.UTC) }
	provider := simulated.NewProvider(now)
	store := storage.NewInProcessStore(simulated.SeedMemory(now()))
	pub := &spyPublisher{}
	obs := &observedRun{}
	return &fixture{
		store:     store,
		publisher: pub,
		observer:  obs,
		deps: OrchestratorDeps{
			Memory:      store,
			Activity:    provider,
			Fundraising: provider,
			Generator:   generator.NewTemplate("", ""),
			Judge:       judge.NewHeuristic(judge.DefaultRubric()),
			Publisher:   pub,
			Updater:     memory.NewUpdater(store, 0, now),
			Observer:    obs,
		},
	}
}

func candidates(ids ...string) []domain.PostCandidate {
	out := make([]domain.PostCandidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.PostCandidate{CandidateID: id, Platform: domain.PlatformLinkedIn, Text: "post " + id})
	}
	return out
}

func TestRunMilestoneScenario(t *testing.T) {
	f := newFixture()
	result, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.NoError(t, err)

	assert.Equal(t, "c2", result.FinalPost.CandidateID)
	assert.Contains(t, result.FinalPost.Text, "smashed")
	assert.Equal(t, result.FinalPost.CandidateID, result.Feedback.CandidateID)
	assert.Equal(t, 85, result.Feedback.Score)
	assert.Equal(t, domain.DecisionApprove, result.Feedback.Decision)

	log := result.Trajectory
	_, err = uuid.Parse(log.SessionID)
	require.NoError(t, err)
	require.Len(t, log.Steps, 7)
	assert.Contains(t, log.FinalDecisionSummary, "linkedin")
	assert.Contains(t, log.FinalDecisionSummary, "85")

	wantNames := []string{stepLoadMemory, stepRetrieveData, stepPlan, stepGenerate, stepQualityGate, stepPublish, stepUpdateMemory}
	for i, step := range log.Steps {
		assert.Equal(t, i+1, step.StepNumber)
		assert.Equal(t, wantNames[i], step.StepName)
		assert.Equal(t, time.UTC, step.Timestamp.Location())
		if i > 0 {
			assert.False(t, step.Timestamp.Before(log.Steps[i-1].Timestamp), "timestamps must not go backwards")
		}
		assert.NotNil(t, step.ToolsUsed)
	}

	assert.Equal(t, 10.0, log.Steps[1].Notes["distance_km"])
	assert.Equal(t, 507.15, log.Steps[1].Notes["total_raised"])
	assert.Equal(t, 101.4, log.Steps[1].Notes["percent_to_goal"])
	assert.Equal(t, "professional", log.Steps[2].Notes["tone"])
	assert.Equal(t, 3, log.Steps[3].Notes["candidate_count"])
	assert.Equal(t, []string{"c1", "c2", "c3"}, log.Steps[3].Notes["candidate_ids"])
	assert.Equal(t, map[string]int{"c1": 80, "c2": 85, "c3": 85}, log.Steps[4].Notes["scores"])
	assert.Equal(t, "c2", log.Steps[4].Notes["selected_candidate_id"])
	assert.Equal(t, "APPROVE", log.Steps[4].Notes["decision"])
	assert.True(t, strings.HasPrefix(log.Steps[5].Notes["publish_result"].(string), "[SIMULATED PUBLISH] Platform=linkedin | Text='"))
	assert.Equal(t, memory.Confirmation, log.Steps[6].Notes["memory_update"])
	assert.Equal(t, log.FinalDecisionSummary, log.Steps[6].Notes["final_decision_summary"])

	require.Len(t, f.publisher.calls, 1)
	stored, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.FinalPost.Text, stored.Episodic.PastSuccessfulPosts[len(stored.Episodic.PastSuccessfulPosts)-1])

	assert.Equal(t, OutcomeSuccess, f.observer.outcome)
	assert.Equal(t, []int{85}, f.observer.scores)
}

func TestRunTieBreakKeepsFirstSeen(t *testing.T) {
	f := newFixture()
	j := &scriptedJudge{scores: map[string]int{"a": 70, "b": 90, "c": 90, "d": 89}}
	f.deps.Generator = fixedGenerator{candidates: candidates("a", "b", "c", "d")}
	f.deps.Judge = j

	result, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.NoError(t, err)

	assert.Equal(t, "b", result.FinalPost.CandidateID)
	assert.Equal(t, "b", result.Feedback.CandidateID)
	assert.Equal(t, []string{"a", "b", "c", "d"}, j.order, "judging follows generation order")
}

func TestRunLaterStrictlyHigherScoreWins(t *testing.T) {
	f := newFixture()
	f.deps.Generator = fixedGenerator{candidates: candidates("a", "b")}
	f.deps.Judge = &scriptedJudge{scores: map[string]int{"a": 0, "b": 1}}

	result, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.NoError(t, err)
	assert.Equal(t, "b", result.FinalPost.CandidateID)
}

func TestRunEmptyCandidateSetIsSelectionError(t *testing.T) {
	f := newFixture()
	f.deps.Generator = fixedGenerator{candidates: []domain.PostCandidate{}}

	result, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindSelection, domain.KindOf(err))
	assert.Empty(t, result.Trajectory.Steps)
	assert.Empty(t, f.publisher.calls)
	assert.Equal(t, OutcomeNoCandidates, f.observer.outcome)
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{domain.SelectionErrorf(stepGenerate, "generator produced no candidates"), OutcomeNoCandidates},
		{domain.SelectionErrorf(stepQualityGate, "not approved"), OutcomeNotApproved},
		{fmt.Errorf("wrapped: %w", domain.SelectionErrorf(stepQualityGate, "not approved")), OutcomeNotApproved},
		{domain.CollaboratorError(stepGenerate, errors.New("boom")), OutcomeFailed},
		{errors.New("plain"), OutcomeFailed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, outcomeOf(tc.err), "%v", tc.err)
	}
}

func TestRunDoesNotPublishUnapprovedWinner(t *testing.T) {
	for _, decision := range []domain.JudgeDecision{domain.DecisionRevise, domain.DecisionReject} {
		t.Run(string(decision), func(t *testing.T) {
			f := newFixture()
			f.deps.Generator = fixedGenerator{candidates: candidates("a", "b")}
			f.deps.Judge = &scriptedJudge{
				scores:    map[string]int{"a": 60, "b": 95},
				decisions: map[string]domain.JudgeDecision{"b": decision},
			}
			before, _ := f.store.Get(context.Background())

			_, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
			require.Error(t, err)
			assert.Equal(t, domain.KindSelection, domain.KindOf(err))
			assert.Contains(t, err.Error(), string(decision))
			assert.Empty(t, f.publisher.calls)

			after, _ := f.store.Get(context.Background())
			assert.Equal(t, before, after, "memory must not change when nothing is published")
		})
	}
}

func TestRunCollaboratorFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.deps.Fundraising = failingFundraising{}

	_, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindCollaborator, domain.KindOf(err))
	assert.Contains(t, err.Error(), stepRetrieveData)
	assert.Contains(t, err.Error(), "upstream timeout")
	assert.Empty(t, f.publisher.calls)
	assert.Equal(t, OutcomeFailed, f.observer.outcome)
}

func TestRunRejectsInvalidJudgeOutput(t *testing.T) {
	f := newFixture()
	f.deps.Generator = fixedGenerator{candidates: candidates("a")}
	f.deps.Judge = &scriptedJudge{scores: map[string]int{"a": 140}}

	_, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindCollaborator, domain.KindOf(err))
}

func TestRunRejectsDuplicateCandidateIDs(t *testing.T) {
	f := newFixture()
	f.deps.Generator = fixedGenerator{candidates: candidates("a", "a")}

	_, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindCollaborator, domain.KindOf(err))
}

func TestRunRequiresCollaborators(t *testing.T) {
	f := newFixture()
	f.deps.Publisher = nil

	_, err := NewOrchestrator(f.deps).Run(context.Background(), milestoneRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publisher is not configured")
}

func TestRunSessionIDsAreUnique(t *testing.T) {
	f := newFixture()
	orch := NewOrchestrator(f.deps)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		result, err := orch.Run(context.Background(), milestoneRequest())
		require.NoError(t, err)
		require.False(t, seen[result.Trajectory.SessionID])
		seen[result.Trajectory.SessionID] = true
	}
}

func TestRecorderClampsBackwardsClock(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.November, 28, 12, 0, 0, 0, time.FixedZone("BST", 3600))
	ticks := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	var (
		mu sync.Mutex
		i  int
	)
	rec := newRecorder(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts := ticks[i%len(ticks)]
		i++
		return ts
	})

	rec.record("a", "", nil, nil)
	rec.record("b", "", nil, nil)
	rec.record("c", "", []string{"tool"}, nil)

	log := rec.log("session", "done")
	require.Len(t, log.Steps, 3)
	assert.Equal(t, base.UTC(), log.Steps[0].Timestamp)
	assert.Equal(t, base.UTC(), log.Steps[1].Timestamp)
	assert.Equal(t, base.Add(time.Second).UTC(), log.Steps[2].Timestamp)
	assert.Equal(t, []string{}, log.Steps[0].ToolsUsed)
	assert.Equal(t, 3, log.Steps[2].StepNumber)
}
