package service

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "query", Message: "must not be empty"}

	want := "validation error on field query: must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	wrapped := WrapError(ErrUpstream, "embedding call failed")
	if !errors.Is(wrapped, ErrUpstream) {
		t.Error("wrapped error should match ErrUpstream")
	}
	if wrapped.Error() != "embedding call failed: upstream error" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}
