package output

import (
	"context"

	"web-automation-agent/internal/domain/entity"
)

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
}

type ChatResponse struct {
	Content string
}

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type EmbedderPort interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
