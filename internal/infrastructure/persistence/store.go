package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
)

var (
	_ output.ArtifactStore = (*Store)(nil)
	_ output.RunStore      = (*Store)(nil)
)

// Store persists run histories and screenshot artifacts on disk, one
// timestamped file per item under a single base directory.
type Store struct {
	baseDir string
	logger  output.LoggerPort
}

func NewStore(baseDir string, logger output.LoggerPort) (*Store, error) {
	if baseDir == "" {
		baseDir = "runs"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{baseDir: baseDir, logger: logger}, nil
}

func (s *Store) SaveScreenshot(ctx context.Context, shot *entity.Screenshot, label string) (string, error) {
	if shot == nil || len(shot.Data) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}

	name := fmt.Sprintf("%s_%s.%s", time.Now().Format("15-04-05"), sanitize(label), shot.Format)
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	s.logger.Debug("Screenshot saved", "path", path, "bytes", len(shot.Data))
	return path, nil
}

func (s *Store) SaveRun(ctx context.Context, result *entity.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", time.Now().Format("2006-01-02_15-04-05"), sanitize(result.History.Task))
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run result: %w", err)
	}

	s.logger.Info("Run history persisted", "path", path)
	return nil
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	s = string(result)
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
