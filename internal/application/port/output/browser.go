package output

import (
	"context"
	"errors"
	"time"

	"web-automation-agent/internal/domain/entity"
)

// Sentinel failures surfaced by browser adapters. The executor maps them
// 1:1 onto entity.ErrorKind; anything unwrapped becomes driver_error.
var (
	ErrTimeout          = errors.New("browser: operation timed out")
	ErrElementNotFound  = errors.New("browser: element not found")
	ErrNavigationFailed = errors.New("browser: navigation failed")
)

type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	// PageState reports where the session currently is. Best effort: a
	// degraded browser returns zero values rather than an error.
	PageState(ctx context.Context) entity.Observed

	Close()
}
