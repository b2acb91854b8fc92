package prompts

import (
	"strings"
	"testing"
)

func TestGeneratePlannerPrompt(t *testing.T) {
	prompt, err := GeneratePlannerPrompt(PlannerData{
		Task:     "Log into the admin panel",
		StartURL: "https://acme.example",
		Context:  "input[name='username'] input[name='password']",
		History:  "none",
	})
	if err != nil {
		t.Fatalf("GeneratePlannerPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "Log into the admin panel") {
		t.Error("Prompt should contain the task")
	}
	if !strings.Contains(prompt, "https://acme.example") {
		t.Error("Prompt should contain the start url")
	}
	if !strings.Contains(prompt, "name='username'") {
		t.Error("Prompt should contain the retrieved context")
	}
}

func TestGenerateReplanPrompt(t *testing.T) {
	prompt, err := GenerateReplanPrompt(ReplanData{
		Task:          "Log into the admin panel",
		StartURL:      "https://acme.example",
		Context:       "context here",
		History:       "- step 1 click \"#login\" FAILED",
		FailureReason: "element_not_found: execution failed",
		PassedSteps:   "- navigate \"https://acme.example\": page loaded",
	})
	if err != nil {
		t.Fatalf("GenerateReplanPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "element_not_found") {
		t.Error("Prompt should contain the failure reason")
	}
	if !strings.Contains(prompt, "do NOT repeat") {
		t.Error("Prompt should forbid repeating completed steps")
	}
	if !strings.Contains(prompt, "page loaded") {
		t.Error("Prompt should list passed steps")
	}
}

func TestGenerateJudgePrompt(t *testing.T) {
	prompt, err := GenerateJudgePrompt(JudgeData{
		Intent:   "dashboard visible after login",
		Observed: "url=https://acme.example/dashboard title=Dashboard detail=",
	})
	if err != nil {
		t.Fatalf("GenerateJudgePrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "dashboard visible after login") {
		t.Error("Prompt should contain the intent")
	}
	if !strings.Contains(prompt, "title=Dashboard") {
		t.Error("Prompt should contain the observation")
	}
}

func TestSystemPrompts_NotEmpty(t *testing.T) {
	if !strings.Contains(PlannerSystemPrompt, "JSON") {
		t.Error("Planner system prompt must demand JSON output")
	}
	if !strings.Contains(JudgeSystemPrompt, "JSON") {
		t.Error("Judge system prompt must demand JSON output")
	}
}
