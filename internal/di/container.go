package di

import (
	"context"
	"fmt"
	"time"

	"web-automation-agent/internal/application/port/input"
	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/infrastructure/browser/rod"
	"web-automation-agent/internal/infrastructure/console"
	"web-automation-agent/internal/infrastructure/llm/openrouter"
	"web-automation-agent/internal/infrastructure/logger"
	"web-automation-agent/internal/infrastructure/persistence"
	"web-automation-agent/internal/infrastructure/retrieval"
	"web-automation-agent/internal/usecase/executor"
	"web-automation-agent/internal/usecase/orchestrator"
	"web-automation-agent/internal/usecase/planner"
	"web-automation-agent/internal/usecase/validator"
)

type Container struct {
	Browser output.BrowserPort
	LLM     output.LLMPort
	Logger  output.LoggerPort
	Index   *retrieval.Index
	Runner  input.TaskRunner
}

type Config struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	EmbeddingModel   string
	TargetURL        string
	BrowserHeadless  bool
	BrowserTimeout   time.Duration
	LLMTimeout       time.Duration
	MaxRetries       int
	MaxReplans       int
	JudgeEnabled     bool
	ScrapeDepth      int
	ArtifactDir      string
	LogDir           string
	Debug            bool
}

// NewContainer wires the full agent: infrastructure adapters first, then
// the plan/execute/validate usecases on top of them. The knowledge base
// is scraped and indexed here so the runner starts with context ready.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewZapAdapter(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	if cfg.BrowserTimeout > 0 {
		browserCfg.Timeout = cfg.BrowserTimeout
	}
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	llmCfg.EmbeddingModel = cfg.EmbeddingModel
	llmCfg.Logger = log
	if cfg.LLMTimeout > 0 {
		llmCfg.Timeout = cfg.LLMTimeout
	}
	llm := openrouter.New(llmCfg)

	store, err := persistence.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	var embedder output.EmbedderPort
	if cfg.EmbeddingModel != "" {
		embedder = llm
	}
	index := retrieval.NewIndex(embedder, log)

	scraper := retrieval.NewScraper(log, cfg.ScrapeDepth, 0)
	pages, err := scraper.Scrape(ctx, cfg.TargetURL)
	if err != nil {
		log.Warn("Scrape failed, continuing with empty knowledge base", "error", err)
	}
	if err := index.Build(ctx, pages); err != nil {
		log.Warn("Knowledge base build failed", "error", err)
	}

	plannerUC := planner.New(llm, log, planner.Config{
		StartURL:          cfg.TargetURL,
		HeuristicFallback: true,
	})
	executorUC := executor.New(browser, store, log, browserCfg.Timeout)
	validatorUC := validator.New(llm, log, cfg.JudgeEnabled)

	runner := orchestrator.New(
		plannerUC,
		executorUC,
		validatorUC,
		index,
		store,
		console.New(),
		log,
		orchestrator.Config{
			MaxRetries: cfg.MaxRetries,
			MaxReplans: cfg.MaxReplans,
		},
	)

	return &Container{
		Browser: browser,
		LLM:     llm,
		Logger:  log,
		Index:   index,
		Runner:  runner,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
