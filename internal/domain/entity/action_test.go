package entity

import (
	"errors"
	"testing"
)

func TestNewAction_Navigate(t *testing.T) {
	a, err := NewAction(ActionNavigate, "https://example.com", "", "open the site", 0)
	if err != nil {
		t.Fatalf("NewAction failed: %v", err)
	}
	if a.Kind != ActionNavigate {
		t.Errorf("Expected kind navigate, got %s", a.Kind)
	}
	if a.Target != "https://example.com" {
		t.Errorf("Unexpected target: %s", a.Target)
	}
}

func TestNewAction_NavigateWithoutTarget(t *testing.T) {
	_, err := NewAction(ActionNavigate, "", "", "", 0)
	if err == nil {
		t.Fatal("Expected error for navigate without target")
	}
	var invalid *InvalidActionError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidActionError, got %T", err)
	}
}

func TestNewAction_FillRequiresValue(t *testing.T) {
	_, err := NewAction(ActionFill, "#username", "", "", 1)
	if err == nil {
		t.Fatal("Expected error for fill without value")
	}

	a, err := NewAction(ActionFill, "#username", "user123", "username filled", 1)
	if err != nil {
		t.Fatalf("NewAction failed: %v", err)
	}
	if a.Value != "user123" {
		t.Errorf("Unexpected value: %s", a.Value)
	}
}

func TestNewAction_ClickRequiresTarget(t *testing.T) {
	_, err := NewAction(ActionClick, "", "", "", 0)
	if err == nil {
		t.Error("Expected error for click without target")
	}
}

func TestNewAction_ScreenshotNeedsNothing(t *testing.T) {
	_, err := NewAction(ActionScreenshot, "", "", "evidence", 4)
	if err != nil {
		t.Errorf("Screenshot should not require fields: %v", err)
	}
}

func TestNewAction_UnknownKind(t *testing.T) {
	_, err := NewAction(ActionKind("teleport"), "somewhere", "", "", 0)
	if err == nil {
		t.Error("Expected error for unknown action kind")
	}
}
