package llm

import (
	"context"
	"testing"
)

func TestNewGoogleLLMName(t *testing.T) {
	l, err := NewGoogleLLM(context.Background(), "test-key", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("unexpected error constructing GoogleLLM: %v", err)
	}
	if l.Name() != "google-llm" {
		t.Errorf("expected google-llm, got %s", l.Name())
	}
}

func TestNewGoogleLLMDefaultModel(t *testing.T) {
	l, err := NewGoogleLLM(context.Background(), "test-key", "")
	if err != nil {
		t.Fatalf("unexpected error constructing GoogleLLM: %v", err)
	}
	if l.model != "gemini-1.5-flash" {
		t.Errorf("expected default model gemini-1.5-flash, got %s", l.model)
	}
}
