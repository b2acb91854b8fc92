package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"web-automation-agent/internal/domain/entity"
)

type planStep struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
	Intent string `json:"intent,omitempty"`
}

type planPayload struct {
	Complete bool       `json:"complete"`
	Steps    []planStep `json:"steps"`
}

// parsePlanResponse extracts the JSON object from the model output. Models
// routinely wrap the payload in prose, so everything outside the outermost
// braces is discarded.
func parsePlanResponse(response string) (*planPayload, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &PlanParseError{Raw: response, Err: fmt.Errorf("no JSON object in response")}
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(response[start:end+1]), &payload); err != nil {
		return nil, &PlanParseError{Raw: response, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	return &payload, nil
}

func buildActions(steps []planStep) ([]entity.Action, error) {
	actions := make([]entity.Action, 0, len(steps))
	for i, s := range steps {
		kind := entity.ActionKind(strings.ToLower(strings.TrimSpace(s.Action)))
		intent := s.Intent
		if intent == "" {
			intent = fmt.Sprintf("%s %s", kind, s.Target)
		}
		action, err := entity.NewAction(kind, s.Target, s.Value, intent, i)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}
