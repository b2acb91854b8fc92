package input

import (
	"context"

	"web-automation-agent/internal/domain/entity"
)

type TaskRunner interface {
	Run(ctx context.Context, task string) *entity.RunResult
}
