package entity

import "fmt"

type ActionKind string

const (
	ActionNavigate   ActionKind = "navigate"
	ActionFill       ActionKind = "fill"
	ActionClick      ActionKind = "click"
	ActionWait       ActionKind = "wait"
	ActionScreenshot ActionKind = "screenshot"
)

// Action is one atomic browser operation. Instances are immutable once
// built; a replan produces new Actions rather than mutating old ones.
type Action struct {
	Kind      ActionKind
	Target    string
	Value     string
	Intent    string
	StepIndex int
}

type InvalidActionError struct {
	Kind   ActionKind
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Kind, e.Reason)
}

// NewAction validates the per-kind field requirements: target for
// fill/click/wait, value for fill.
func NewAction(kind ActionKind, target, value, intent string, stepIndex int) (Action, error) {
	switch kind {
	case ActionNavigate:
		if target == "" {
			return Action{}, &InvalidActionError{Kind: kind, Reason: "target url is required"}
		}
	case ActionFill:
		if target == "" {
			return Action{}, &InvalidActionError{Kind: kind, Reason: "target selector is required"}
		}
		if value == "" {
			return Action{}, &InvalidActionError{Kind: kind, Reason: "value is required"}
		}
	case ActionClick, ActionWait:
		if target == "" {
			return Action{}, &InvalidActionError{Kind: kind, Reason: "target selector is required"}
		}
	case ActionScreenshot:
		// no required fields
	default:
		return Action{}, &InvalidActionError{Kind: kind, Reason: "unrecognized kind"}
	}

	return Action{
		Kind:      kind,
		Target:    target,
		Value:     value,
		Intent:    intent,
		StepIndex: stepIndex,
	}, nil
}

// Plan is the ordered action sequence for one task snapshot. Actions are
// causally ordered: action i may assume actions 0..i-1 succeeded.
type Plan struct {
	Goal       string
	Actions    []Action
	Generation int
}

func (p *Plan) Len() int {
	return len(p.Actions)
}
