package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is a single text-generation call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // zero means the client default
}

// Generator turns a prompt into free-form text.
// Implementations may call an LLM or return canned replies (for tests).
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerationError is returned when the generation service fails or replies
// with nothing usable, so callers can tell "upstream degraded" apart from
// their own mistakes.
type GenerationError struct {
	Reason  string
	Wrapped error
}

func (e *GenerationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
