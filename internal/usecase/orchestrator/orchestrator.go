package orchestrator

import (
	"context"
	"errors"
	"time"

	"web-automation-agent/internal/application/port/input"
	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
	"web-automation-agent/internal/usecase/planner"
)

var _ input.TaskRunner = (*Orchestrator)(nil)

type runState string

const (
	statePlanning   runState = "planning"
	stateExecuting  runState = "executing"
	stateValidating runState = "validating"
	stateAdvancing  runState = "advancing"
	stateRetrying   runState = "retrying"
	stateReplanning runState = "replanning"
)

const (
	DefaultMaxRetries = 2
	DefaultMaxReplans = 2
	defaultRetrievalK = 5
)

// ActionPlanner produces and revises plans. *planner.Planner satisfies it.
type ActionPlanner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Response, error)
	Replan(ctx context.Context, req planner.Request, failureReason string, priorGeneration int) (*planner.Response, error)
}

// ActionExecutor attempts exactly one action per call.
type ActionExecutor interface {
	Execute(ctx context.Context, action entity.Action) entity.ExecutionOutcome
}

// ActionValidator judges one outcome against its action's intent.
type ActionValidator interface {
	Validate(ctx context.Context, action entity.Action, outcome entity.ExecutionOutcome) entity.ValidationVerdict
}

type Config struct {
	// MaxRetries bounds re-executions of a step beyond its first attempt.
	MaxRetries int
	// MaxReplans bounds planner revisions within one run.
	MaxReplans int
	// RetrievalK is how many context snippets to fetch at run start.
	RetrievalK int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		MaxReplans: DefaultMaxReplans,
		RetrievalK: defaultRetrievalK,
	}
}

// Orchestrator drives the plan→execute→validate cycle for one task against
// one browser session. It is the sole owner of the run history and the
// current plan; planner and validator are stateless per-call services.
type Orchestrator struct {
	planner   ActionPlanner
	executor  ActionExecutor
	validator ActionValidator
	retrieval output.RetrievalPort
	runs      output.RunStore
	progress  output.ProgressPort
	logger    output.LoggerPort
	cfg       Config
}

func New(
	p ActionPlanner,
	e ActionExecutor,
	v ActionValidator,
	retrieval output.RetrievalPort,
	runs output.RunStore,
	progress output.ProgressPort,
	logger output.LoggerPort,
	cfg Config,
) *Orchestrator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxReplans < 0 {
		cfg.MaxReplans = DefaultMaxReplans
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = defaultRetrievalK
	}
	return &Orchestrator{
		planner:   p,
		executor:  e,
		validator: v,
		retrieval: retrieval,
		runs:      runs,
		progress:  progress,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes one task to a terminal result. It never panics outward and
// never returns without a result: every failure mode, including
// cancellation, lands in a RunResult carrying the full history.
func (o *Orchestrator) Run(ctx context.Context, task string) *entity.RunResult {
	history := entity.NewRunHistory(task)
	o.logger.Info("Run started", "runID", history.ID, "task", task)

	result := o.drive(ctx, task, history)

	history.FinishedAt = time.Now()
	if o.progress != nil {
		o.progress.ShowResult(result)
	}
	o.persist(ctx, result)

	o.logger.Info("Run finished",
		"runID", history.ID,
		"status", result.Status,
		"steps", len(history.Records),
		"replans", history.ReplansUsed,
	)
	return result
}

func (o *Orchestrator) drive(ctx context.Context, task string, history *entity.RunHistory) *entity.RunResult {
	snippets, err := o.retrieval.Retrieve(ctx, task, o.cfg.RetrievalK)
	if err != nil {
		return o.failed(history, 0, entity.ErrorKindDriverError, "retrieval collaborator unreachable: "+err.Error())
	}
	o.logger.Debug("Context retrieved", "snippets", len(snippets))

	var (
		plan     *entity.Plan
		stepIdx  int
		attempts = make(map[int]int) // per-generation, reset on replan
		// repairStep is the index whose budget is spent: after a replan the
		// first action already encodes the failure fix, so it gets a single
		// attempt before escalating again.
		repairStep     = -1
		pendingFailure string
		action         entity.Action
		outcome        entity.ExecutionOutcome
	)

	state := statePlanning

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.failed(history, stepIdx, entity.ErrorKindCancelled, "run cancelled between states")
		}

		switch state {
		case statePlanning:
			req := planner.Request{Task: task, Context: snippets, History: history}

			var resp *planner.Response
			if plan == nil {
				resp, err = o.planner.Plan(ctx, req)
			} else {
				resp, err = o.planner.Replan(ctx, req, pendingFailure, plan.Generation)
			}
			if err != nil {
				var ungrounded *planner.UngroundedPlanError
				if errors.As(err, &ungrounded) {
					return o.failed(history, stepIdx, entity.ErrorKindDriverError, err.Error())
				}
				return o.failed(history, stepIdx, entity.ErrorKindDriverError, "planning failed: "+err.Error())
			}
			if resp.Complete {
				o.logger.Info("Planner reports task already complete")
				return o.done(history, stepIdx)
			}

			plan = resp.Plan
			stepIdx = 0
			if o.progress != nil {
				o.progress.ShowPlan(plan)
			}
			state = stateExecuting

		case stateExecuting:
			action = plan.Actions[stepIdx]
			attempts[stepIdx]++
			if o.progress != nil {
				o.progress.ShowStep(action, attempts[stepIdx])
			}
			outcome = o.executor.Execute(ctx, action)
			state = stateValidating

		case stateValidating:
			verdict := o.validator.Validate(ctx, action, outcome)
			history.Append(action, outcome, verdict)
			if o.progress != nil {
				o.progress.ShowVerdict(action, verdict)
			}

			if verdict.Passed {
				state = stateAdvancing
				break
			}

			retryBudget := o.cfg.MaxRetries
			if stepIdx == repairStep {
				retryBudget = 0
			}

			switch {
			case attempts[stepIdx] <= retryBudget:
				state = stateRetrying
			case history.ReplansUsed < o.cfg.MaxReplans:
				pendingFailure = failureReason(outcome, verdict)
				state = stateReplanning
			default:
				return o.failed(history, stepIdx, terminalKind(outcome), "retry and replan budgets exhausted: "+verdict.Reason)
			}

		case stateRetrying:
			// Transient conditions (e.g. a race before an element appears)
			// are retried in place without involving the planner.
			o.logger.Debug("Retrying step", "step", stepIdx, "attempt", attempts[stepIdx]+1)
			state = stateExecuting

		case stateReplanning:
			history.ReplansUsed++
			attempts = make(map[int]int)
			repairStep = 0
			o.logger.Warn("Replanning", "replansUsed", history.ReplansUsed, "reason", pendingFailure)
			state = statePlanning

		case stateAdvancing:
			if stepIdx == repairStep {
				repairStep = -1
			}
			stepIdx++
			if stepIdx >= plan.Len() {
				return o.done(history, stepIdx-1)
			}
			state = stateExecuting
		}
	}
}

func (o *Orchestrator) done(history *entity.RunHistory, finalStep int) *entity.RunResult {
	return &entity.RunResult{
		Status:    entity.RunDone,
		FinalStep: finalStep,
		History:   history,
	}
}

func (o *Orchestrator) failed(history *entity.RunHistory, finalStep int, kind entity.ErrorKind, reason string) *entity.RunResult {
	o.logger.Error("Run failed", "step", finalStep, "kind", kind, "reason", reason)
	return &entity.RunResult{
		Status:      entity.RunFailed,
		FinalStep:   finalStep,
		FailureKind: kind,
		Reason:      reason,
		History:     history,
	}
}

// persist hands the finished history to the run store. Fire-and-forget: a
// store failure is logged, never fatal, and survives caller cancellation.
func (o *Orchestrator) persist(ctx context.Context, result *entity.RunResult) {
	if o.runs == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.runs.SaveRun(saveCtx, result); err != nil {
		o.logger.Error("Failed to persist run history", "error", err)
	}
}

func failureReason(outcome entity.ExecutionOutcome, verdict entity.ValidationVerdict) string {
	if outcome.ErrorKind != entity.ErrorKindNone {
		return string(outcome.ErrorKind) + ": " + verdict.Reason
	}
	return verdict.Reason
}

func terminalKind(outcome entity.ExecutionOutcome) entity.ErrorKind {
	if outcome.ErrorKind != entity.ErrorKindNone {
		return outcome.ErrorKind
	}
	return entity.ErrorKindDriverError
}
