package service

import (
	"context"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
)

// Coach writes the end-of-session report.
type Coach struct {
	gen     llm.Generator
	table   *prompts.Table
	timeout time.Duration
}

func NewCoach(gen llm.Generator, table *prompts.Table, timeout time.Duration) *Coach {
	return &Coach{gen: gen, table: table, timeout: timeout}
}

// Report assembles the evidence from turns and calls the generation service
// once. The reply is returned as-is.
func (c *Coach) Report(ctx context.Context, mode interview.Mode, turns []interview.Turn) (string, error) {
	prompt, err := c.table.Coaching(mode, interview.Transcript(turns), interview.Feedback(turns))
	if err != nil {
		return "", err
	}

	return c.gen.Generate(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: 0.3,
		MaxTokens:   600,
		Timeout:     c.timeout,
	})
}
