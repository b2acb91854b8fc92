package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
	"web-automation-agent/internal/infrastructure/prompts"
)

// Validator judges whether an action's effect matches its intent. The
// heuristic path always runs; the LLM judge, when enabled, is ANDed with
// it so the model can never override a structurally obvious failure.
type Validator struct {
	llm          output.LLMPort
	logger       output.LoggerPort
	judgeEnabled bool
}

func New(llm output.LLMPort, logger output.LoggerPort, judgeEnabled bool) *Validator {
	return &Validator{
		llm:          llm,
		logger:       logger,
		judgeEnabled: judgeEnabled && llm != nil,
	}
}

// Validate never mutates its inputs. For identical inputs the heuristic
// path produces an identical verdict.
func (v *Validator) Validate(ctx context.Context, action entity.Action, outcome entity.ExecutionOutcome) entity.ValidationVerdict {
	verdict := heuristicVerdict(action, outcome)

	// A heuristic failure short-circuits the AND; the judge cannot flip it.
	if !verdict.Passed || !v.judgeEnabled {
		return verdict
	}

	judgePassed, judgeReason, err := v.askJudge(ctx, action, outcome)
	if err != nil {
		// Degraded mode: judge unavailable, heuristic verdict stands.
		v.logger.Warn("LLM judge unavailable, using heuristic verdict only", "error", err)
		return verdict
	}

	verdict.Confidence = entity.ConfidenceCombined
	if !judgePassed {
		verdict.Passed = false
		verdict.Reason = "judge rejected: " + judgeReason
	}
	return verdict
}

func heuristicVerdict(action entity.Action, outcome entity.ExecutionOutcome) entity.ValidationVerdict {
	if outcome.Failed() {
		return fail(fmt.Sprintf("execution failed: %s", outcome.ErrorKind))
	}

	switch action.Kind {
	case entity.ActionNavigate:
		return validateNavigation(action, outcome)
	case entity.ActionScreenshot:
		if outcome.ArtifactRef == "" {
			return fail("no artifact captured")
		}
		return pass("artifact captured: " + outcome.ArtifactRef)
	case entity.ActionFill, entity.ActionClick, entity.ActionWait:
		return pass(fmt.Sprintf("%s completed without error", action.Kind))
	default:
		return fail(fmt.Sprintf("no heuristic for kind %q", action.Kind))
	}
}

// validateNavigation compares the observed URL and title against
// expectation tokens derived from the action's target and intent.
func validateNavigation(action entity.Action, outcome entity.ExecutionOutcome) entity.ValidationVerdict {
	url := strings.ToLower(outcome.Observed.URL)
	title := strings.ToLower(outcome.Observed.Title)

	if url == "" {
		return fail("browser reported no URL after navigation")
	}
	if strings.Contains(url, strings.ToLower(strings.TrimRight(action.Target, "/"))) {
		return pass("landed on " + outcome.Observed.URL)
	}

	for _, token := range expectationTokens(action.Target + " " + action.Intent) {
		if strings.Contains(url, token) || strings.Contains(title, token) {
			return pass(fmt.Sprintf("page matches expectation %q", token))
		}
	}

	// Redirects after navigation are common; an observed page with a title
	// still counts when nothing contradicts the intent.
	if title != "" {
		return pass("page loaded: " + outcome.Observed.Title)
	}
	return fail(fmt.Sprintf("observed %q does not match %q", outcome.Observed.URL, action.Target))
}

var stopwords = map[string]bool{
	"http": true, "https": true, "www": true, "page": true, "site": true,
	"loaded": true, "with": true, "the": true, "and": true, "into": true,
}

func expectationTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 4 && !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

type judgePayload struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

func (v *Validator) askJudge(ctx context.Context, action entity.Action, outcome entity.ExecutionOutcome) (bool, string, error) {
	prompt, err := prompts.GenerateJudgePrompt(prompts.JudgeData{
		Intent:   action.Intent,
		Observed: fmt.Sprintf("url=%s title=%s detail=%s", outcome.Observed.URL, outcome.Observed.Title, outcome.Observed.Detail),
	})
	if err != nil {
		return false, "", err
	}

	resp, err := v.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: prompts.JudgeSystemPrompt},
			{Role: entity.RoleUser, Content: prompt},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return false, "", fmt.Errorf("judge llm request failed: %w", err)
	}

	payload, err := parseJudgeResponse(resp.Content)
	if err != nil {
		return false, "", err
	}
	return payload.Passed, payload.Reason, nil
}

func parseJudgeResponse(response string) (*judgePayload, error) {
	response = strings.TrimSpace(response)
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON in judge response")
	}

	var payload judgePayload
	if err := json.Unmarshal([]byte(response[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse judge JSON: %w", err)
	}
	return &payload, nil
}

func pass(reason string) entity.ValidationVerdict {
	return entity.ValidationVerdict{Passed: true, Reason: reason, Confidence: entity.ConfidenceHeuristic}
}

func fail(reason string) entity.ValidationVerdict {
	return entity.ValidationVerdict{Passed: false, Reason: reason, Confidence: entity.ConfidenceHeuristic}
}
