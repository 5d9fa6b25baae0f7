package dnnerr

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := NewWithPTS(BackendExecutionError, "engine.Submit", 12*time.Millisecond, errors.New("dispatch failed"))

	if !errors.Is(err, ErrBackendExecution) {
		t.Fatalf("expected errors.Is to match ErrBackendExecution, got false")
	}
	if errors.Is(err, ErrConfig) {
		t.Fatalf("expected errors.Is to NOT match ErrConfig")
	}
}

func TestKindOf(t *testing.T) {
	err := New(ConfigError, "stage.New", errors.New("missing model option"))
	if got := KindOf(err); got != ConfigError {
		t.Errorf("KindOf: got %q, want %q", got, ConfigError)
	}

	if got := KindOf(errors.New("plain error")); got != "" {
		t.Errorf("KindOf(plain error): got %q, want empty", got)
	}
}

func TestErrorMessageIncludesPTS(t *testing.T) {
	err := NewWithPTS(BackendExecutionError, "reqpool.dispatch", 500*time.Millisecond, errors.New("boom"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
	if !strings.Contains(msg, "pts=500ms") {
		t.Errorf("expected message to include pts=500ms, got %q", msg)
	}
}
