package output

import (
	"context"

	"web-automation-agent/internal/domain/entity"
)

type ArtifactStore interface {
	// SaveScreenshot persists captured image bytes and returns a reference
	// usable in the run history.
	SaveScreenshot(ctx context.Context, shot *entity.Screenshot, label string) (string, error)
}

// RunStore persists a finished run. Fire-and-forget from the control
// loop's perspective: a store failure must not change the run outcome.
type RunStore interface {
	SaveRun(ctx context.Context, result *entity.RunResult) error
}
