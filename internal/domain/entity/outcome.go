package entity

type OutcomeStatus string

const (
	OutcomeOK    OutcomeStatus = "ok"
	OutcomeError OutcomeStatus = "error"
)

type ErrorKind string

const (
	ErrorKindNone             ErrorKind = ""
	ErrorKindTimeout          ErrorKind = "timeout"
	ErrorKindElementNotFound  ErrorKind = "element_not_found"
	ErrorKindNavigationFailed ErrorKind = "navigation_failed"
	ErrorKindDriverError      ErrorKind = "driver_error"
	ErrorKindCancelled        ErrorKind = "cancelled"
)

// Observed is the collaborator-reported signal after an attempt: where the
// browser ended up plus any raw diagnostic detail.
type Observed struct {
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ExecutionOutcome is the result of attempting one Action. Created by the
// executor, never mutated afterwards.
type ExecutionOutcome struct {
	Status      OutcomeStatus `json:"status"`
	Observed    Observed      `json:"observed"`
	ErrorKind   ErrorKind     `json:"error_kind,omitempty"`
	ArtifactRef string        `json:"artifact_ref,omitempty"`
}

func (o ExecutionOutcome) Failed() bool {
	return o.Status == OutcomeError
}

// Screenshot holds captured image bytes before they are persisted as an
// artifact.
type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
