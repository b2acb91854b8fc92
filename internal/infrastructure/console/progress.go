package console

import (
	"fmt"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*Progress)(nil)

// Progress renders run progress on stdout. Informational only.
type Progress struct{}

func New() *Progress {
	return &Progress{}
}

func (p *Progress) ShowPlan(plan *entity.Plan) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n━━━ Plan (generation %d, %d steps) ━━━\n", plan.Generation, plan.Len())

	dim := color.New(color.Faint)
	for _, a := range plan.Actions {
		dim.Printf("  %d. %s %s\n", a.StepIndex+1, a.Kind, truncate(a.Target, 60))
	}
}

func (p *Progress) ShowStep(action entity.Action, attempt int) {
	yellow := color.New(color.FgYellow, color.Bold)
	suffix := ""
	if attempt > 1 {
		suffix = fmt.Sprintf(" (attempt %d)", attempt)
	}
	yellow.Printf("\n▶ step %d: %s %s%s\n", action.StepIndex+1, action.Kind, truncate(action.Target, 60), suffix)
}

func (p *Progress) ShowVerdict(action entity.Action, verdict entity.ValidationVerdict) {
	if verdict.Passed {
		green := color.New(color.FgGreen)
		green.Printf("  ✓ %s\n", truncate(verdict.Reason, 100))
		return
	}
	red := color.New(color.FgRed)
	red.Printf("  ✗ %s\n", truncate(verdict.Reason, 100))
}

func (p *Progress) ShowResult(result *entity.RunResult) {
	if result.Status == entity.RunDone {
		green := color.New(color.FgGreen, color.Bold)
		green.Printf("\n━━━ DONE (%d steps, %d replans) ━━━\n",
			len(result.History.Records), result.History.ReplansUsed)
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Printf("\n━━━ FAILED at step %d: %s ━━━\n", result.FinalStep+1, result.Reason)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
