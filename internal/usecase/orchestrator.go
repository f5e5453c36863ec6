package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

const totalSteps = 7

const (
	stepLoadMemory   = "load_memory"
	stepRetrieveData = "retrieve_campaign_data"
	stepPlan         = "plan_communication"
	stepGenerate     = "generate_candidates"
	stepQualityGate  = "quality_gate"
	stepPublish      = "publish"
	stepUpdateMemory = "update_memory"
)

const (
	toolGetMemory      = "get_memory_state"
	toolGetActivity    = "get_activity_summary"
	toolGetFundraising = "get_fundraising_summary"
	toolGenerate       = "generate_post_candidates"
	toolJudge          = "judge_post_quality"
	toolPublish        = "publish_post"
	toolUpdateMemory   = "update_memory_state"
)

const (
	OutcomeSuccess      = "success"
	OutcomeNotApproved  = "not_approved"
	OutcomeNoCandidates = "no_candidates"
	OutcomeFailed       = "failed"
)

// OrchestratorDeps wires all collaborators into the orchestrator.
type OrchestratorDeps struct {
	Memory      ports.MemoryStore
	Activity    ports.ActivitySource
	Fundraising ports.FundraisingSource
	Generator   ports.CandidateGenerator
	Judge       ports.Judge
	Publisher   ports.Publisher
	Updater     ports.MemoryUpdater
	Observer    ports.RunObserver
	Logger      *slog.Logger
	Clock       func() time.Time
	NewID       func() string
}

// Orchestrator runs the seven-step post-and-approve workflow.
type Orchestrator struct {
	memory      ports.MemoryStore
	activity    ports.ActivitySource
	fundraising ports.FundraisingSource
	generator   ports.CandidateGenerator
	judge       ports.Judge
	publisher   ports.Publisher
	updater     ports.MemoryUpdater
	observer    ports.RunObserver
	logger      *slog.Logger
	clock       func() time.Time
	newID       func() string
}

// Result is what a successful run hands back to the caller.
type Result struct {
	FinalPost  domain.PostCandidate `json:"final_post"`
	Feedback   domain.JudgeFeedback `json:"judge_feedback"`
	Trajectory domain.TrajectoryLog `json:"trajectory_log"`
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	o := &Orchestrator{
		memory:      deps.Memory,
		activity:    deps.Activity,
		fundraising: deps.Fundraising,
		generator:   deps.Generator,
		judge:       deps.Judge,
		publisher:   deps.Publisher,
		updater:     deps.Updater,
		observer:    deps.Observer,
		logger:      deps.Logger,
		clock:       deps.Clock,
		newID:       deps.NewID,
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o
}

// Run executes one session for req. The request must already be validated.
// On failure no trajectory is returned.
func (o *Orchestrator) Run(ctx context.Context, req domain.PostRequest) (Result, error) {
	if err := o.ready(); err != nil {
		return Result{}, err
	}

	started := o.clock()
	sessionID := o.newID()
	logger := o.log().With("session_id", sessionID, "platform", req.TargetPlatform)

	result, err := o.run(ctx, sessionID, req, logger)

	outcome := outcomeOf(err)
	if o.observer != nil {
		o.observer.ObserveRun(outcome, o.clock().Sub(started))
	}

	if err != nil {
		logger.Warn("run failed", "outcome", outcome, "error", err)
		return Result{}, err
	}

	logger.Info("run completed",
		"candidate_id", result.FinalPost.CandidateID,
		"score", result.Feedback.Score,
		"decision", result.Feedback.Decision)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, sessionID string, req domain.PostRequest, logger *slog.Logger) (Result, error) {
	rec := newRecorder(o.clock)

	// 1. memory
	mem, err := o.memory.Get(ctx)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepLoadMemory, err)
	}
	rec.record(stepLoadMemory, "Loaded statistical and episodic memory for the campaign.",
		[]string{toolGetMemory},
		map[string]any{
			"lifetime_raised":   mem.Statistical.TotalLifetimeRaised,
			"lifetime_km_run":   mem.Statistical.TotalLifetimeKmRun,
			"last_update_date":  mem.Statistical.LastUpdateDate,
			"past_posts_stored": len(mem.Episodic.PastSuccessfulPosts),
		})
	logger.Debug("step recorded", "step", stepLoadMemory)

	// 2. activity + fundraising
	activity, err := o.activity.ActivitySummary(ctx)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepRetrieveData, fmt.Errorf("activity: %w", err))
	}
	fundraising, err := o.fundraising.FundraisingSummary(ctx)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepRetrieveData, fmt.Errorf("fundraising: %w", err))
	}
	rec.record(stepRetrieveData, "Retrieved the latest activity and fundraising snapshots.",
		[]string{toolGetActivity, toolGetFundraising},
		map[string]any{
			"event_name":      activity.EventName,
			"distance_km":     activity.DistanceKm,
			"total_raised":    fundraising.TotalRaised,
			"target_amount":   fundraising.TargetAmount,
			"percent_to_goal": fundraising.PercentToGoal,
		})
	logger.Debug("step recorded", "step", stepRetrieveData)

	// 3. plan
	rec.record(stepPlan, "Chose platform, tone and framing for the post.", nil,
		map[string]any{
			"platform":  string(req.TargetPlatform),
			"tone":      string(req.Tone),
			"objective": req.Objective,
			"audience":  req.Audience,
		})
	logger.Debug("step recorded", "step", stepPlan)

	// 4. candidates
	candidates, err := o.generator.Generate(ctx, req, activity, fundraising)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepGenerate, err)
	}
	if len(candidates) == 0 {
		return Result{}, domain.SelectionErrorf(stepGenerate, "generator produced no candidates")
	}
	ids, err := candidateIDs(candidates)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepGenerate, err)
	}
	rec.record(stepGenerate, fmt.Sprintf("Generated %d candidate posts.", len(candidates)),
		[]string{toolGenerate},
		map[string]any{
			"candidate_count": len(candidates),
			"candidate_ids":   ids,
		})
	logger.Debug("step recorded", "step", stepGenerate, "candidates", len(candidates))

	// 5. quality gate
	best, scores, err := selectBest(ctx, o.judge, candidates, req.TargetPlatform)
	if err != nil {
		return Result{}, err
	}
	if o.observer != nil {
		o.observer.ObserveScore(req.TargetPlatform, best.feedback.Score)
	}
	rec.record(stepQualityGate, "Scored every candidate and selected the highest-scoring one.",
		[]string{toolJudge},
		map[string]any{
			"scores":                scores,
			"selected_candidate_id": best.candidate.CandidateID,
			"score":                 best.feedback.Score,
			"decision":              string(best.feedback.Decision),
		})
	logger.Debug("step recorded", "step", stepQualityGate, "selected", best.candidate.CandidateID)

	switch best.feedback.Decision {
	case domain.DecisionApprove:
	case domain.DecisionRevise, domain.DecisionReject:
		return Result{}, domain.SelectionErrorf(stepQualityGate, "best candidate %s was not approved (%s): %s",
			best.candidate.CandidateID, best.feedback.Decision, best.feedback.Reasons)
	default:
		return Result{}, domain.CollaboratorError(stepQualityGate,
			fmt.Errorf("unknown judge decision %q", best.feedback.Decision))
	}

	// 6. publish
	published, err := o.publisher.Publish(ctx, best.candidate)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepPublish, err)
	}
	rec.record(stepPublish, "Published the approved post.", []string{toolPublish},
		map[string]any{"publish_result": published})
	logger.Debug("step recorded", "step", stepPublish)

	// 7. memory update
	confirmation, err := o.updater.Update(ctx, mem, best.candidate)
	if err != nil {
		return Result{}, domain.CollaboratorError(stepUpdateMemory, err)
	}
	summary := fmt.Sprintf("Published a %s post for objective '%s' with judge score %d/100 (%s).",
		req.TargetPlatform, req.Objective, best.feedback.Score, best.feedback.Decision)
	rec.record(stepUpdateMemory, "Recorded the published post in memory.", []string{toolUpdateMemory},
		map[string]any{
			"memory_update":          confirmation,
			"final_decision_summary": summary,
		})
	logger.Debug("step recorded", "step", stepUpdateMemory)

	return Result{
		FinalPost:  best.candidate,
		Feedback:   best.feedback,
		Trajectory: rec.log(sessionID, summary),
	}, nil
}

// outcomeOf maps a run error to the metrics outcome label.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Kind != domain.KindSelection {
		return OutcomeFailed
	}
	if derr.Op == stepGenerate {
		return OutcomeNoCandidates
	}
	return OutcomeNotApproved
}

func (o *Orchestrator) ready() error {
	missing := ""
	switch {
	case o.memory == nil:
		missing = "memory store"
	case o.activity == nil:
		missing = "activity source"
	case o.fundraising == nil:
		missing = "fundraising source"
	case o.generator == nil:
		missing = "candidate generator"
	case o.judge == nil:
		missing = "judge"
	case o.publisher == nil:
		missing = "publisher"
	case o.updater == nil:
		missing = "memory updater"
	}
	if missing != "" {
		return domain.CollaboratorError("run", fmt.Errorf("%s is not configured", missing))
	}
	return nil
}

func (o *Orchestrator) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.New(slog.DiscardHandler)
}

func candidateIDs(candidates []domain.PostCandidate) ([]string, error) {
	ids := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.CandidateID]; dup {
			return nil, fmt.Errorf("duplicate candidate id %q", c.CandidateID)
		}
		seen[c.CandidateID] = struct{}{}
		ids = append(ids, c.CandidateID)
	}
	return ids, nil
}
