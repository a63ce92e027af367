package service

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
)

// Verdict is a normalized evaluation. Degraded is set when the default
// score and feedback were used; Cause then says why.
type Verdict struct {
	Score    int
	Feedback string
	Degraded bool
	Cause    error
}

// ReplyParser extracts a score and feedback from an evaluator reply.
// ok is false when the reply does not have the parser's shape or the
// score is outside [1,5].
type ReplyParser func(reply string) (score int, feedback string, ok bool)

// Parsers are tried in order; the first success wins.
var Parsers = []ReplyParser{ParseStructured, ParseMarkers}

// NormalizeEvaluation runs the parser chain over reply and falls back to the
// default verdict. It never fails.
func NormalizeEvaluation(reply string) Verdict {
	for _, parse := range Parsers {
		if score, feedback, ok := parse(reply); ok {
			return Verdict{Score: score, Feedback: feedback}
		}
	}
	return fallbackVerdict(&llm.GenerationError{Reason: "unparseable evaluation"})
}

func fallbackVerdict(cause error) Verdict {
	return Verdict{
		Score:    interview.DefaultScore,
		Feedback: interview.DefaultFeedback,
		Degraded: true,
		Cause:    cause,
	}
}

var (
	scoreKeys    = []string{"score", "ai_interviewer_score"}
	feedbackKeys = []string{"feedback", "ai_interviewer_feedback"}
)

// ParseStructured accepts a JSON object, possibly wrapped in prose or code
// fences, with an integral score (number or numeric string) and a non-empty
// feedback string.
func ParseStructured(reply string) (int, string, bool) {
	raw := llm.ExtractJSON(reply)
	if raw == "" {
		return 0, "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return 0, "", false
	}

	score, ok := 0, false
	for _, k := range scoreKeys {
		if v, found := fields[k]; found {
			score, ok = decodeScore(v)
			break
		}
	}
	if !ok {
		return 0, "", false
	}

	var feedback string
	for _, k := range feedbackKeys {
		if v, found := fields[k]; found {
			if err := json.Unmarshal(v, &feedback); err != nil {
				return 0, "", false
			}
			break
		}
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return 0, "", false
	}
	return score, feedback, true
}

func decodeScore(v json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		n = json.Number(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	// 4.0 is a score, 4.5 is not.
	if err != nil || math.Trunc(f) != f || f < interview.MinScore || f > interview.MaxScore {
		return 0, false
	}
	return int(f), true
}

// Markers may be wrapped in markdown bold, as in "**Score:** 4".
var markerPattern = regexp.MustCompile(`(?is)score\s*\**\s*[:=]\s*\**\s*(\S+?)\s*[.,;]?\s+\**\s*feedback\s*\**\s*[:=]\s*\**\s*(.+)`)

// ParseMarkers accepts "Score: <digit>. Feedback: <sentence>." free text.
// Feedback runs to the end of its line.
func ParseMarkers(reply string) (int, string, bool) {
	m := markerPattern.FindStringSubmatch(reply)
	if m == nil {
		return 0, "", false
	}

	score, err := strconv.Atoi(strings.Trim(m[1], "*"))
	if err != nil || !interview.ValidScore(score) {
		return 0, "", false
	}

	feedback := m[2]
	if i := strings.IndexByte(feedback, '\n'); i >= 0 {
		feedback = feedback[:i]
	}
	feedback = strings.TrimSpace(trimQuotes(strings.TrimSpace(feedback)))
	if feedback == "" {
		return 0, "", false
	}
	return score, feedback, true
}

// Evaluator grades one answered turn.
type Evaluator struct {
	gen     llm.Generator
	table   *prompts.Table
	timeout time.Duration
}

func NewEvaluator(gen llm.Generator, table *prompts.Table, timeout time.Duration) *Evaluator {
	return &Evaluator{gen: gen, table: table, timeout: timeout}
}

// Evaluate always returns a verdict. A generation failure degrades to the
// default score and feedback instead of aborting the round.
func (e *Evaluator) Evaluate(ctx context.Context, mode interview.Mode, question, answer string) Verdict {
	prompt, err := e.table.Evaluation(mode, question, answer)
	if err != nil {
		return fallbackVerdict(err)
	}

	reply, err := e.gen.Generate(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: 0.2,
		MaxTokens:   200,
		Timeout:     e.timeout,
	})
	if err != nil {
		return fallbackVerdict(err)
	}
	return NormalizeEvaluation(reply)
}
