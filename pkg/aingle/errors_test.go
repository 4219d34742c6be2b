package aingle

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := newError(CodeTimeout, "get entry: request timed out", nil)
	if got, want := err.Error(), "aingle: TIMEOUT: get entry: request timed out"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	bare := newError(CodeNetworkError, "", nil)
	if got, want := bare.Error(), "aingle: NETWORK_ERROR"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestErrorUnwrapsToSentinel(t *testing.T) {
	err := newError(CodeNotFound, "no entry", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeNotFound {
		t.Fatalf("expected CodeOf to see through wrapping, got %q", CodeOf(wrapped))
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if code := CodeOf(errors.New("plain")); code != "" {
		t.Fatalf("expected empty code, got %q", code)
	}
	if IsTimeout(errors.New("plain")) {
		t.Fatalf("plain error must not classify as timeout")
	}
}
