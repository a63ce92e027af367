package service

import (
	"context"
	"strings"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
)

// QuestionGenerator produces the question for one round.
type QuestionGenerator struct {
	gen     llm.Generator
	table   *prompts.Table
	timeout time.Duration
}

func NewQuestionGenerator(gen llm.Generator, table *prompts.Table, timeout time.Duration) *QuestionGenerator {
	return &QuestionGenerator{gen: gen, table: table, timeout: timeout}
}

// Next returns the question for round (1-based). asked holds every question
// already put to the candidate, oldest first. A blank reply is a
// GenerationError; nothing is retried here.
func (g *QuestionGenerator) Next(ctx context.Context, mode interview.Mode, asked []string, round int) (string, error) {
	prompt, err := g.table.Question(mode, asked, round)
	if err != nil {
		return "", err
	}

	reply, err := g.gen.Generate(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: 0.8,
		MaxTokens:   120,
		Timeout:     g.timeout,
	})
	if err != nil {
		return "", err
	}

	question := cleanQuestion(reply)
	if question == "" {
		return "", &llm.GenerationError{Reason: "blank question"}
	}
	return question, nil
}

var (
	questionPrefixes = []string{"question:", "q:"}
	preamblePrefixes = []string{"here is", "here's", "sure", "okay", "ok,", "certainly", "your question", "next question", "the next question"}
)

// cleanQuestion strips the packaging models like to put around a question:
// code fences, a "Here is your question:" line, a "Question:" label and
// wrapping quotes.
func cleanQuestion(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 1 && isPreamble(lines[0]) {
		lines = lines[1:]
	}
	s = strings.Join(lines, " ")

	lower := strings.ToLower(s)
	for _, p := range questionPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	return strings.TrimSpace(trimQuotes(s))
}

// isPreamble reports whether line is a lead-in such as "Here is your
// question:" rather than part of the question itself.
func isPreamble(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	lower := strings.ToLower(line)
	for _, p := range preamblePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func trimQuotes(s string) string {
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return s[len(pair[0]) : len(s)-len(pair[1])]
		}
	}
	return s
}
