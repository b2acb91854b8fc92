package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"
	"web-automation-agent/internal/infrastructure/logger"
)

type fakeBrowser struct {
	navigateErr error
	fillErr     error
	clickErr    error
	waitErr     error
	shotErr     error

	lastFillSelector string
	lastFillValue    string

	url   string
	title string
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error { return f.navigateErr }
func (f *fakeBrowser) Fill(ctx context.Context, selector, value string) error {
	f.lastFillSelector = selector
	f.lastFillValue = value
	return f.fillErr
}
func (f *fakeBrowser) Click(ctx context.Context, selector string) error { return f.clickErr }
func (f *fakeBrowser) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return f.waitErr
}
func (f *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	return &entity.Screenshot{Data: []byte{0xff, 0xd8}, Format: "jpeg"}, nil
}
func (f *fakeBrowser) PageState(ctx context.Context) entity.Observed {
	return entity.Observed{URL: f.url, Title: f.title}
}
func (f *fakeBrowser) Close() {}

type fakeArtifacts struct {
	saved int
	err   error
}

func (f *fakeArtifacts) SaveScreenshot(ctx context.Context, shot *entity.Screenshot, label string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved++
	return "runs/shot.jpeg", nil
}

func newTestExecutor(b output.BrowserPort, a output.ArtifactStore) *Executor {
	return New(b, a, logger.NewNop(), time.Second)
}

func TestExecute_NavigateSuccess(t *testing.T) {
	browser := &fakeBrowser{url: "https://example.com/login", title: "Login"}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionNavigate, Target: "https://example.com/login"})

	if outcome.Status != entity.OutcomeOK {
		t.Fatalf("Expected ok, got %s (%s)", outcome.Status, outcome.Observed.Detail)
	}
	if outcome.Observed.URL != "https://example.com/login" {
		t.Errorf("Observed URL not captured: %q", outcome.Observed.URL)
	}
	if outcome.ErrorKind != entity.ErrorKindNone {
		t.Errorf("Expected no error kind, got %s", outcome.ErrorKind)
	}
}

func TestExecute_FillPassesSelectorAndValue(t *testing.T) {
	browser := &fakeBrowser{}
	e := newTestExecutor(browser, &fakeArtifacts{})

	e.Execute(context.Background(), entity.Action{Kind: entity.ActionFill, Target: "#username", Value: "admin"})

	if browser.lastFillSelector != "#username" || browser.lastFillValue != "admin" {
		t.Errorf("Fill got %q=%q", browser.lastFillSelector, browser.lastFillValue)
	}
}

func TestExecute_TimeoutClassified(t *testing.T) {
	browser := &fakeBrowser{waitErr: output.ErrTimeout}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionWait, Target: "#slow"})

	if !outcome.Failed() {
		t.Fatal("Expected failed outcome")
	}
	if outcome.ErrorKind != entity.ErrorKindTimeout {
		t.Errorf("Expected timeout, got %s", outcome.ErrorKind)
	}
}

func TestExecute_ElementNotFoundClassified(t *testing.T) {
	browser := &fakeBrowser{clickErr: output.ErrElementNotFound}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionClick, Target: "#missing"})

	if outcome.ErrorKind != entity.ErrorKindElementNotFound {
		t.Errorf("Expected element_not_found, got %s", outcome.ErrorKind)
	}
}

func TestExecute_NavigationFailedClassified(t *testing.T) {
	browser := &fakeBrowser{navigateErr: output.ErrNavigationFailed}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionNavigate, Target: "https://unreachable.invalid"})

	if outcome.ErrorKind != entity.ErrorKindNavigationFailed {
		t.Errorf("Expected navigation_failed, got %s", outcome.ErrorKind)
	}
}

func TestExecute_UnknownErrorKeepsRawMessage(t *testing.T) {
	browser := &fakeBrowser{clickErr: errors.New("chrome crashed unexpectedly")}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionClick, Target: "#btn"})

	if outcome.ErrorKind != entity.ErrorKindDriverError {
		t.Errorf("Expected driver_error, got %s", outcome.ErrorKind)
	}
	if outcome.Observed.Detail != "chrome crashed unexpectedly" {
		t.Errorf("Raw error must be preserved, got %q", outcome.Observed.Detail)
	}
}

func TestExecute_CancelledContext(t *testing.T) {
	browser := &fakeBrowser{navigateErr: context.Canceled}
	e := newTestExecutor(browser, &fakeArtifacts{})

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionNavigate, Target: "https://example.com"})

	if outcome.ErrorKind != entity.ErrorKindCancelled {
		t.Errorf("Expected cancelled, got %s", outcome.ErrorKind)
	}
}

func TestExecute_ScreenshotStoresArtifact(t *testing.T) {
	browser := &fakeBrowser{url: "https://example.com"}
	artifacts := &fakeArtifacts{}
	e := newTestExecutor(browser, artifacts)

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionScreenshot, StepIndex: 4})

	if outcome.Status != entity.OutcomeOK {
		t.Fatalf("Expected ok, got %s", outcome.Status)
	}
	if outcome.ArtifactRef == "" {
		t.Error("Expected artifact reference in outcome")
	}
	if artifacts.saved != 1 {
		t.Errorf("Expected 1 stored artifact, got %d", artifacts.saved)
	}
}

func TestExecute_ScreenshotStoreFailure(t *testing.T) {
	browser := &fakeBrowser{}
	artifacts := &fakeArtifacts{err: errors.New("disk full")}
	e := newTestExecutor(browser, artifacts)

	outcome := e.Execute(context.Background(), entity.Action{Kind: entity.ActionScreenshot})

	if !outcome.Failed() {
		t.Fatal("Expected failure when artifact store errors")
	}
	if outcome.ErrorKind != entity.ErrorKindDriverError {
		t.Errorf("Expected driver_error, got %s", outcome.ErrorKind)
	}
}

func TestExecute_SameInputSameOutcome(t *testing.T) {
	browser := &fakeBrowser{url: "https://example.com", title: "Home"}
	e := newTestExecutor(browser, &fakeArtifacts{})
	action := entity.Action{Kind: entity.ActionNavigate, Target: "https://example.com"}

	first := e.Execute(context.Background(), action)
	second := e.Execute(context.Background(), action)

	if first.Status != second.Status || first.ErrorKind != second.ErrorKind || first.Observed != second.Observed {
		t.Errorf("Outcomes differ for identical input: %+v vs %+v", first, second)
	}
}
