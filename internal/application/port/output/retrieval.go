package output

import (
	"context"

	"web-automation-agent/internal/domain/entity"
)

type RetrievalPort interface {
	// Retrieve returns up to k snippets ordered most relevant first. An
	// empty result is not an error.
	Retrieve(ctx context.Context, query string, k int) ([]entity.Snippet, error)
}
