package entity

type VerdictConfidence string

const (
	// ConfidenceHeuristic means only the structural checks ran.
	ConfidenceHeuristic VerdictConfidence = "heuristic"
	// ConfidenceCombined means the LLM judge ran and was ANDed with the
	// heuristic result.
	ConfidenceCombined VerdictConfidence = "heuristic+llm"
)

// ValidationVerdict is the judgment on one ExecutionOutcome.
type ValidationVerdict struct {
	Passed     bool              `json:"passed"`
	Reason     string            `json:"reason"`
	Confidence VerdictConfidence `json:"confidence"`
}
