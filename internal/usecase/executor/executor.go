package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
)

const defaultTimeout = 30 * time.Second

// Executor performs exactly one browser attempt per call. Retry policy
// belongs to the orchestrator, so given the same browser state the same
// action produces the same outcome.
type Executor struct {
	browser   output.BrowserPort
	artifacts output.ArtifactStore
	logger    output.LoggerPort
	timeout   time.Duration
}

func New(browser output.BrowserPort, artifacts output.ArtifactStore, logger output.LoggerPort, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Executor{
		browser:   browser,
		artifacts: artifacts,
		logger:    logger,
		timeout:   timeout,
	}
}

// Execute attempts one action. Failures are encoded in the outcome, never
// returned: the raw collaborator message is preserved in Observed.Detail.
func (e *Executor) Execute(ctx context.Context, action entity.Action) entity.ExecutionOutcome {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debug("Executing action", "kind", action.Kind, "target", action.Target, "step", action.StepIndex)

	var artifactRef string
	var err error

	switch action.Kind {
	case entity.ActionNavigate:
		err = e.browser.Navigate(callCtx, action.Target)
	case entity.ActionFill:
		err = e.browser.Fill(callCtx, action.Target, action.Value)
	case entity.ActionClick:
		err = e.browser.Click(callCtx, action.Target)
	case entity.ActionWait:
		err = e.browser.WaitFor(callCtx, action.Target, e.timeout)
	case entity.ActionScreenshot:
		artifactRef, err = e.captureScreenshot(callCtx, action)
	default:
		err = fmt.Errorf("unknown action kind: %s", action.Kind)
	}

	observed := e.browser.PageState(callCtx)

	if err != nil {
		kind := classify(callCtx, err)
		observed.Detail = err.Error()
		e.logger.Warn("Action failed", "kind", action.Kind, "target", action.Target, "errorKind", kind, "error", err)
		return entity.ExecutionOutcome{
			Status:    entity.OutcomeError,
			Observed:  observed,
			ErrorKind: kind,
		}
	}

	e.logger.Debug("Action completed", "kind", action.Kind, "url", observed.URL)
	return entity.ExecutionOutcome{
		Status:      entity.OutcomeOK,
		Observed:    observed,
		ArtifactRef: artifactRef,
	}
}

func (e *Executor) captureScreenshot(ctx context.Context, action entity.Action) (string, error) {
	shot, err := e.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}

	label := action.Target
	if label == "" {
		label = fmt.Sprintf("step-%d", action.StepIndex+1)
	}

	ref, err := e.artifacts.SaveScreenshot(ctx, shot, label)
	if err != nil {
		return "", fmt.Errorf("artifact capture failed: %w", err)
	}
	return ref, nil
}

// classify maps collaborator failures 1:1 onto the error taxonomy. Unknown
// errors become driver_error; nothing is swallowed.
func classify(ctx context.Context, err error) entity.ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return entity.ErrorKindCancelled
	case errors.Is(err, output.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return entity.ErrorKindTimeout
	case errors.Is(err, output.ErrElementNotFound):
		return entity.ErrorKindElementNotFound
	case errors.Is(err, output.ErrNavigationFailed):
		return entity.ErrorKindNavigationFailed
	default:
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return entity.ErrorKindTimeout
		}
		return entity.ErrorKindDriverError
	}
}
