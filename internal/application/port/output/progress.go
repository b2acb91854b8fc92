package output

import "web-automation-agent/internal/domain/entity"

// ProgressPort surfaces the run to whoever is watching the console. Purely
// informational; the control loop never depends on it.
type ProgressPort interface {
	ShowPlan(plan *entity.Plan)
	ShowStep(action entity.Action, attempt int)
	ShowVerdict(action entity.Action, verdict entity.ValidationVerdict)
	ShowResult(result *entity.RunResult)
}
