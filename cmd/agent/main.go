package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"web-automation-agent/internal/di"
	"web-automation-agent/internal/domain/entity"
	"web-automation-agent/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()

	task := envService.MustGet("TASK")
	targetURL := envService.MustGet("TARGET_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, di.Config{
		OpenRouterAPIKey: envService.MustGet("OPENROUTER_API_KEY"),
		OpenRouterModel:  envService.MustGet("OPENROUTER_MODEL_NAME"),
		EmbeddingModel:   envService.Get("EMBEDDING_MODEL_NAME"),
		TargetURL:        targetURL,
		BrowserHeadless:  envService.GetBool("BROWSER_HEADLESS", true),
		BrowserTimeout:   time.Duration(envService.GetInt("BROWSER_TIMEOUT_MS", 10000)) * time.Millisecond,
		LLMTimeout:       time.Duration(envService.GetInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxRetries:       envService.GetInt("MAX_RETRIES", 2),
		MaxReplans:       envService.GetInt("MAX_REPLANS", 2),
		JudgeEnabled:     envService.GetBool("JUDGE_ENABLED", true),
		ScrapeDepth:      envService.GetInt("SCRAPE_DEPTH", 2),
		ArtifactDir:      envService.GetWithDefault("ARTIFACT_DIR", "runs"),
		LogDir:           envService.GetWithDefault("LOG_DIR", "log"),
		Debug:            envService.GetBool("DEBUG", false),
	})
	if err != nil {
		log.Fatalf("Initialization failed: %v", err)
	}
	defer container.Close()

	container.Logger.Info("Task started", "task", task, "url", targetURL)

	result := container.Runner.Run(ctx, task)

	if result.Status != entity.RunDone {
		container.Logger.Error("Task failed", "reason", result.Reason, "step", result.FinalStep)
		os.Exit(1)
	}

	container.Logger.Info("Task completed",
		"steps", len(result.History.Records),
		"replans", result.History.ReplansUsed)
	fmt.Println("\nTask completed successfully.")
}
