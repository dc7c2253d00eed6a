package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"api key not valid", errors.New("API key not valid. Please pass a valid API key."), CategoryInvalidCredential},
		{"quota word", errors.New("resource exhausted: quota exceeded for requests"), CategoryQuotaExceeded},
		{"status 429", errors.New("got HTTP 429 from upstream"), CategoryQuotaExceeded},
		{"status 400", errors.New("error 400: bad request payload"), CategoryInvalidRequest},
		{"status 500", errors.New("internal error 500"), CategoryServiceUnavailable},
		{"status 503", errors.New("503 service unavailable"), CategoryServiceUnavailable},
		{"safety block", errors.New("response blocked: SAFETY"), CategoryContentBlocked},
		{"unknown", errors.New("something odd happened"), CategoryUnexpected},
		{"nil error", nil, CategoryGenericUnavailable},
		{"empty message", emptyError{}, CategoryGenericUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got == nil {
				t.Fatal("Classify must never return nil")
			}
			if got.Category != tt.want {
				t.Errorf("Classify(%v) category = %s, want %s", tt.err, got.Category, tt.want)
			}
			if got.Message == "" {
				t.Error("Classified errors must carry a user-facing message")
			}
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	got := Classify(errors.New("QUOTA limit reached"))
	if got.Category != CategoryQuotaExceeded {
		t.Errorf("Matching should be case-insensitive, got %s", got.Category)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Contains both the credential phrase and "400"; credential rule is first
	got := Classify(errors.New("400: API key not valid"))
	if got.Category != CategoryInvalidCredential {
		t.Errorf("First rule should win, got %s", got.Category)
	}
}

func TestClassifyUnexpectedEchoesOriginal(t *testing.T) {
	original := "the flux capacitor misfired"
	got := Classify(errors.New(original))
	if got.Category != CategoryUnexpected {
		t.Fatalf("Expected unexpected category, got %s", got.Category)
	}
	if !strings.Contains(got.Message, original) {
		t.Errorf("Unexpected-category message should echo the original text, got %q", got.Message)
	}
}

func TestClassifyMissingAPIKeyAppError(t *testing.T) {
	err := NewConfigError(ErrCodeMissingAPIKey, "No Gemini API key configured", nil)
	got := Classify(err)
	if got.Category != CategoryInvalidCredential {
		t.Errorf("Missing credential should classify as invalid-credential, got %s", got.Category)
	}
}

func TestClassifyWrappedErrors(t *testing.T) {
	inner := NewConfigError(ErrCodeMissingAPIKey, "no key", nil)
	wrapped := fmt.Errorf("operation 'prepkit' failed after 1 attempts: %w", inner)
	got := Classify(wrapped)
	if got.Category != CategoryInvalidCredential {
		t.Errorf("Classification should see through wrapping, got %s", got.Category)
	}
}

func TestClassifyPassesThroughUserError(t *testing.T) {
	original := &UserError{Category: CategoryContentBlocked, Message: "blocked"}
	wrapped := fmt.Errorf("outer: %w", original)
	got := Classify(wrapped)
	if got != original {
		t.Error("An already classified error should pass through unchanged")
	}
}

func TestClassifyNeverPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Classify panicked: %v", r)
		}
	}()

	inputs := []error{nil, emptyError{}, errors.New("x"), fmt.Errorf("%w", errors.New(""))}
	for _, err := range inputs {
		if Classify(err) == nil {
			t.Fatal("nil result")
		}
	}
}
