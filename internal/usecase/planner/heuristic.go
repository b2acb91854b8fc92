package planner

import (
	"strings"

	"web-automation-agent/internal/domain/entity"
)

// Common login selectors, broadest first. HackerNews uses name='acct' and
// name='pw'; Moodle-style sites use #username/#password.
const (
	usernameSelectors = "input[name='acct'], input[name='username'], input[name='email'], #username, #email"
	passwordSelectors = "input[name='pw'], input[name='password'], #password, #pass"
	submitSelectors   = "input[type='submit'], button[type='submit'], #loginbtn"
)

func looksLikeLogin(task string) bool {
	t := strings.ToLower(task)
	return strings.Contains(t, "login") || strings.Contains(t, "log in") || strings.Contains(t, "sign in")
}

// heuristicLoginPlan builds the deterministic navigate/fill/fill/click/
// screenshot sequence used when the model produced no usable steps for a
// login task.
func heuristicLoginPlan(task, startURL string, generation int) *entity.Plan {
	username := extractCredential(task, []string{"username", "user", "id"})
	password := extractCredential(task, []string{"password", "pass"})

	steps := []entity.Action{
		{Kind: entity.ActionNavigate, Target: startURL, Intent: "login page loaded", StepIndex: 0},
		{Kind: entity.ActionFill, Target: usernameSelectors, Value: username, Intent: "username filled", StepIndex: 1},
		{Kind: entity.ActionFill, Target: passwordSelectors, Value: password, Intent: "password filled", StepIndex: 2},
		{Kind: entity.ActionClick, Target: submitSelectors, Intent: "login form submitted", StepIndex: 3},
		{Kind: entity.ActionScreenshot, Intent: "evidence captured", StepIndex: 4},
	}

	return &entity.Plan{
		Goal:       task + " (heuristic fallback)",
		Actions:    steps,
		Generation: generation,
	}
}

// extractCredential pulls a quoted value that follows one of the keywords,
// matching the documented plain-text credential convention, e.g.
// "Username is 'user123'".
func extractCredential(task string, keywords []string) string {
	words := strings.Fields(task)
	for i, word := range words {
		lower := strings.ToLower(word)
		matched := false
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for j := i + 1; j < len(words) && j <= i+3; j++ {
			candidate := strings.Trim(words[j], `'".,`)
			if candidate == "" || candidate == "is" || candidate == "=" {
				continue
			}
			return candidate
		}
	}
	return "unknown_value"
}
