package planner

import (
	"context"
	"fmt"
	"strings"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
	"web-automation-agent/internal/infrastructure/prompts"
)

const (
	defaultContextBudget = 4000
	defaultParseRetries  = 2
)

// PlanParseError means the model output could not be turned into a
// well-formed plan. Retryable: the planner re-prompts up to its budget
// before surfacing it.
type PlanParseError struct {
	Raw string
	Err error
}

func (e *PlanParseError) Error() string {
	return fmt.Sprintf("plan parse failed: %v", e.Err)
}

func (e *PlanParseError) Unwrap() error { return e.Err }

// UngroundedPlanError means the model invented a target that does not
// appear in the retrieved context. Not retryable with the same context.
type UngroundedPlanError struct {
	Target string
}

func (e *UngroundedPlanError) Error() string {
	return fmt.Sprintf("plan not grounded in context: target %q", e.Target)
}

type Request struct {
	Task    string
	Context []entity.Snippet
	History *entity.RunHistory
}

// Response distinguishes "nothing left to do" from a produced plan: when
// Complete is true the task is already done and Plan is nil.
type Response struct {
	Complete bool
	Plan     *entity.Plan
}

type Config struct {
	// StartURL grounds navigate targets that point at the task's site.
	StartURL string
	// ContextBudget clamps the retrieved context, in characters.
	ContextBudget int
	// ParseRetries bounds re-prompting after malformed model output.
	ParseRetries int
	// HeuristicFallback enables the deterministic login plan when the
	// model returns an empty step list for a login-looking task.
	HeuristicFallback bool
}

func DefaultConfig(startURL string) Config {
	return Config{
		StartURL:          startURL,
		ContextBudget:     defaultContextBudget,
		ParseRetries:      defaultParseRetries,
		HeuristicFallback: true,
	}
}

type Planner struct {
	llm    output.LLMPort
	logger output.LoggerPort
	cfg    Config
}

func New(llm output.LLMPort, logger output.LoggerPort, cfg Config) *Planner {
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = defaultContextBudget
	}
	if cfg.ParseRetries <= 0 {
		cfg.ParseRetries = defaultParseRetries
	}
	return &Planner{llm: llm, logger: logger, cfg: cfg}
}

// Plan produces the initial plan for a task from the retrieved context.
func (p *Planner) Plan(ctx context.Context, req Request) (*Response, error) {
	prompt, err := prompts.GeneratePlannerPrompt(prompts.PlannerData{
		Task:     req.Task,
		StartURL: p.cfg.StartURL,
		Context:  p.renderContext(req.Context),
		History:  renderHistory(req.History),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build planner prompt: %w", err)
	}

	return p.invoke(ctx, req, prompt, 1)
}

// Replan revises the remaining plan after a step exhausted its retries.
// The new plan's first action addresses failureReason; steps already
// validated as passed are never re-issued.
func (p *Planner) Replan(ctx context.Context, req Request, failureReason string, priorGeneration int) (*Response, error) {
	prompt, err := prompts.GenerateReplanPrompt(prompts.ReplanData{
		Task:          req.Task,
		StartURL:      p.cfg.StartURL,
		Context:       p.renderContext(req.Context),
		History:       renderHistory(req.History),
		FailureReason: failureReason,
		PassedSteps:   renderPassedSteps(req.History),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build replan prompt: %w", err)
	}

	resp, err := p.invoke(ctx, req, prompt, priorGeneration+1)
	if err != nil {
		return nil, err
	}
	if resp.Plan != nil {
		resp.Plan.Actions = dropCompletedActions(resp.Plan.Actions, req.History)
		if len(resp.Plan.Actions) == 0 {
			return &Response{Complete: true}, nil
		}
	}
	return resp, nil
}

func (p *Planner) invoke(ctx context.Context, req Request, prompt string, generation int) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.ParseRetries; attempt++ {
		resp, err := p.llm.Chat(ctx, output.ChatRequest{
			Messages: []entity.Message{
				{Role: entity.RoleSystem, Content: prompts.PlannerSystemPrompt},
				{Role: entity.RoleUser, Content: prompt},
			},
			Temperature: 0.0,
		})
		if err != nil {
			lastErr = &PlanParseError{Err: fmt.Errorf("llm request failed: %w", err)}
			p.logger.Warn("Planner llm call failed", "attempt", attempt+1, "error", err)
			continue
		}

		parsed, err := parsePlanResponse(resp.Content)
		if err != nil {
			lastErr = err
			p.logger.Warn("Planner output unparseable, re-prompting", "attempt", attempt+1, "error", err)
			continue
		}

		if parsed.Complete {
			p.logger.Info("Planner judged task already complete")
			return &Response{Complete: true}, nil
		}

		if len(parsed.Steps) == 0 {
			if p.cfg.HeuristicFallback && looksLikeLogin(req.Task) {
				p.logger.Warn("Planner returned no steps, using heuristic login plan")
				return &Response{Plan: heuristicLoginPlan(req.Task, p.cfg.StartURL, generation)}, nil
			}
			lastErr = &PlanParseError{Raw: resp.Content, Err: fmt.Errorf("empty step list")}
			continue
		}

		actions, err := buildActions(parsed.Steps)
		if err != nil {
			lastErr = &PlanParseError{Raw: resp.Content, Err: err}
			p.logger.Warn("Planner produced malformed action, re-prompting", "attempt", attempt+1, "error", err)
			continue
		}

		if err := p.checkGrounding(actions, req); err != nil {
			return nil, err
		}

		plan := &entity.Plan{
			Goal:       req.Task,
			Actions:    actions,
			Generation: generation,
		}
		p.logger.Info("Plan produced", "generation", generation, "steps", len(actions))
		return &Response{Plan: plan}, nil
	}

	return nil, lastErr
}

// checkGrounding rejects actions whose targets do not appear in (and are
// not derivable from) the supplied context or task. The planner must not
// invent page structure the validator cannot check.
func (p *Planner) checkGrounding(actions []entity.Action, req Request) error {
	corpus := strings.ToLower(req.Task + "\n" + p.renderContext(req.Context))

	for _, a := range actions {
		switch a.Kind {
		case entity.ActionScreenshot:
			continue
		case entity.ActionNavigate:
			if p.cfg.StartURL != "" && strings.HasPrefix(strings.ToLower(a.Target), strings.ToLower(p.cfg.StartURL)) {
				continue
			}
			if strings.Contains(corpus, strings.ToLower(a.Target)) {
				continue
			}
			return &UngroundedPlanError{Target: a.Target}
		default:
			if targetGrounded(a.Target, corpus) {
				continue
			}
			return &UngroundedPlanError{Target: a.Target}
		}
	}
	return nil
}

// targetGrounded accepts a selector when it, or one of its identifying
// tokens, occurs in the corpus. "#username" is grounded by a context
// mentioning an input named "username".
func targetGrounded(target, corpus string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" {
		return false
	}
	if strings.Contains(corpus, t) {
		return true
	}
	for _, token := range selectorTokens(t) {
		if len(token) >= 3 && strings.Contains(corpus, token) {
			return true
		}
	}
	return false
}

func selectorTokens(selector string) []string {
	return strings.FieldsFunc(selector, func(r rune) bool {
		switch r {
		case '#', '.', '[', ']', '=', '\'', '"', ',', ' ', '>', ':', '(', ')':
			return true
		}
		return false
	})
}

func (p *Planner) renderContext(snippets []entity.Snippet) string {
	var sb strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&sb, "--- snippet %d (%s) ---\n%s\n", i+1, s.SourceURL, s.Content)
		if sb.Len() > p.cfg.ContextBudget {
			break
		}
	}
	out := sb.String()
	if len(out) > p.cfg.ContextBudget {
		out = out[:p.cfg.ContextBudget]
	}
	return out
}

func renderHistory(history *entity.RunHistory) string {
	if history == nil || len(history.Records) == 0 {
		return "none"
	}
	var sb strings.Builder
	for _, rec := range history.Records {
		status := "FAILED"
		if rec.Verdict.Passed {
			status = "ok"
		}
		fmt.Fprintf(&sb, "- step %d %s %q: %s (%s)\n",
			rec.Action.StepIndex, rec.Action.Kind, rec.Action.Target, status, rec.Verdict.Reason)
	}
	return sb.String()
}

func renderPassedSteps(history *entity.RunHistory) string {
	if history == nil {
		return "none"
	}
	var sb strings.Builder
	for _, rec := range history.Records {
		if rec.Verdict.Passed {
			fmt.Fprintf(&sb, "- %s %q: %s\n", rec.Action.Kind, rec.Action.Target, rec.Action.Intent)
		}
	}
	if sb.Len() == 0 {
		return "none"
	}
	return sb.String()
}

// dropCompletedActions removes replanned actions that duplicate a step
// already validated as passed, preserving completed progress.
func dropCompletedActions(actions []entity.Action, history *entity.RunHistory) []entity.Action {
	if history == nil {
		return actions
	}
	passed := make(map[string]bool)
	for _, rec := range history.Records {
		if rec.Verdict.Passed {
			passed[actionKey(rec.Action)] = true
		}
	}

	kept := make([]entity.Action, 0, len(actions))
	for _, a := range actions {
		if passed[actionKey(a)] {
			continue
		}
		a.StepIndex = len(kept)
		kept = append(kept, a)
	}
	return kept
}

func actionKey(a entity.Action) string {
	return string(a.Kind) + "|" + strings.ToLower(a.Target)
}
