package entity

import (
	"time"

	"github.com/google/uuid"
)

// StepRecord is one (Action, ExecutionOutcome, ValidationVerdict) triple.
type StepRecord struct {
	Action  Action            `json:"action"`
	Outcome ExecutionOutcome  `json:"outcome"`
	Verdict ValidationVerdict `json:"verdict"`
}

// RunHistory is the append-only audit trail for one task run. The
// orchestrator owns it exclusively; planner and validator only ever see
// read-only slices of it. It is never reused across tasks.
type RunHistory struct {
	ID              string       `json:"id"`
	Task            string       `json:"task"`
	Records         []StepRecord `json:"records"`
	AttemptsPerStep map[int]int  `json:"attempts_per_step"`
	ReplansUsed     int          `json:"replans_used"`
	StartedAt       time.Time    `json:"started_at"`
	FinishedAt      time.Time    `json:"finished_at,omitempty"`
}

func NewRunHistory(task string) *RunHistory {
	return &RunHistory{
		ID:              uuid.NewString(),
		Task:            task,
		AttemptsPerStep: make(map[int]int),
		StartedAt:       time.Now(),
	}
}

func (h *RunHistory) Append(action Action, outcome ExecutionOutcome, verdict ValidationVerdict) {
	h.Records = append(h.Records, StepRecord{Action: action, Outcome: outcome, Verdict: verdict})
	h.AttemptsPerStep[action.StepIndex]++
}

// PassedSteps returns the step indexes already validated as passed, in
// record order. A replan must not re-issue these.
func (h *RunHistory) PassedSteps() []int {
	var passed []int
	seen := make(map[int]bool)
	for _, rec := range h.Records {
		if rec.Verdict.Passed && !seen[rec.Action.StepIndex] {
			passed = append(passed, rec.Action.StepIndex)
			seen[rec.Action.StepIndex] = true
		}
	}
	return passed
}

// LastFailure returns the most recent failed record, if any.
func (h *RunHistory) LastFailure() (StepRecord, bool) {
	for i := len(h.Records) - 1; i >= 0; i-- {
		if !h.Records[i].Verdict.Passed {
			return h.Records[i], true
		}
	}
	return StepRecord{}, false
}

type RunStatus string

const (
	RunDone   RunStatus = "done"
	RunFailed RunStatus = "failed"
)

// RunResult is the terminal result of a run. The orchestrator always
// returns one instead of surfacing an unhandled fault.
type RunResult struct {
	Status      RunStatus   `json:"status"`
	FinalStep   int         `json:"final_step"`
	FailureKind ErrorKind   `json:"failure_kind,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	History     *RunHistory `json:"history"`
}
