package prompts

import (
	"bytes"
	"text/template"
)

type PlannerData struct {
	Task     string
	StartURL string
	Context  string
	History  string
}

type ReplanData struct {
	Task          string
	StartURL      string
	Context       string
	History       string
	FailureReason string
	PassedSteps   string
}

type JudgeData struct {
	Intent   string
	Observed string
}

func GeneratePlannerPrompt(data PlannerData) (string, error) {
	return render("planner", plannerTemplate, data)
}

func GenerateReplanPrompt(data ReplanData) (string, error) {
	return render("replan", replanTemplate, data)
}

func GenerateJudgePrompt(data JudgeData) (string, error) {
	return render("judge", judgeTemplate, data)
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
