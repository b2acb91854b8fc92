package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var (
	_ output.LLMPort      = (*Adapter)(nil)
	_ output.EmbedderPort = (*Adapter)(nil)
)

// Adapter speaks the OpenAI wire protocol against an OpenRouter-compatible
// endpoint, covering both chat completion and embeddings.
type Adapter struct {
	client         *openai.Client
	model          string
	embeddingModel string
	logger         output.LoggerPort
}

type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	BaseURL        string
	Timeout        time.Duration
	Logger         output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
		Timeout: 60 * time.Second,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.Debug("HTTP request", "method", req.Method, "url", req.URL.String())

	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		t.logger.Debug("HTTP response", "status", resp.Status)
	}
	return resp, err
}

func New(cfg Config) *Adapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Logger != nil {
		httpClient.Transport = &loggingTransport{base: http.DefaultTransport, logger: cfg.Logger}
	}
	clientCfg.HTTPClient = httpClient

	return &Adapter{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		logger:         cfg.Logger,
	}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    convertMessages(req.Messages),
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &output.ChatResponse{Content: resp.Choices[0].Message.Content}, nil
}

func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if a.embeddingModel == "" {
		return nil, fmt.Errorf("no embedding model configured")
	}

	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(a.embeddingModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func convertMessages(messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}
