package prompts_test

import (
	"strings"
	"testing"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/prompts"
)

func TestDefault_HasBothModes(t *testing.T) {
	table := prompts.Default()

	for _, m := range interview.Modes {
		p, err := table.Profile(m)
		if err != nil {
			t.Fatalf("profile %s: %v", m, err)
		}
		if len(p.Topics) != 7 {
			t.Errorf("expected 7 topics for %s, got %d", m, len(p.Topics))
		}
	}
}

func TestTopic_RotatesThroughAllTopics(t *testing.T) {
	p, _ := prompts.Default().Profile(interview.ModeTechnical)

	seen := make(map[string]bool)
	for round := 1; round <= 7; round++ {
		topic := p.Topic(round)
		if seen[topic] {
			t.Fatalf("round %d repeated topic %q before the set was exhausted", round, topic)
		}
		seen[topic] = true
		if topic != p.Topics[round-1] {
			t.Errorf("round %d: expected %q, got %q", round, p.Topics[round-1], topic)
		}
	}

	if p.Topic(8) != p.Topic(1) {
		t.Errorf("expected round 8 to repeat round 1's topic %q, got %q", p.Topic(1), p.Topic(8))
	}
}

func TestQuestion_QuotesOnlyLastThree(t *testing.T) {
	table := prompts.Default()
	recent := []string{"old one?", "q2?", "q3?", "q4?"}

	p, err := table.Question(interview.ModeBehavioral, recent, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(p.User, "old one?") {
		t.Error("expected questions older than the window to be left out")
	}
	for _, q := range recent[1:] {
		if !strings.Contains(p.User, "- "+q) {
			t.Errorf("expected %q in exclusion list", q)
		}
	}
	if !strings.Contains(p.User, "leadership and influence") {
		t.Error("expected round 5 behavioral topic in prompt")
	}
	if !strings.Contains(p.User, "STAR") {
		t.Error("expected STAR register for behavioral mode")
	}
	if !strings.Contains(p.User, "at most 25 words") {
		t.Error("expected length ceiling in prompt")
	}
}

func TestQuestion_NoHistory(t *testing.T) {
	p, err := prompts.Default().Question(interview.ModeTechnical, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p.User, "(none)") {
		t.Error("expected explicit empty exclusion list")
	}
	if !strings.Contains(p.User, "data structures & algorithms") {
		t.Error("expected first technical topic")
	}
}

func TestQuestion_UnknownMode(t *testing.T) {
	if _, err := prompts.Default().Question(interview.Mode("trivia"), nil, 1); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCoaching_IsDeterministic(t *testing.T) {
	table := prompts.Default()
	transcript := []string{"Q: a", "A: b"}
	feedback := []string{"Too vague."}

	first, _ := table.Coaching(interview.ModeBehavioral, transcript, feedback)
	second, _ := table.Coaching(interview.ModeBehavioral, transcript, feedback)

	if first != second {
		t.Error("expected identical prompts for identical evidence")
	}
	for _, want := range []string{"### Strengths", "### Improvements", "### Next practice", "Turn 1: Too vague.", "A: b"} {
		if !strings.Contains(first.User, want) {
			t.Errorf("expected %q in coaching prompt", want)
		}
	}
}

func TestParse_RejectsIncompleteTable(t *testing.T) {
	data := []byte(`
question_word_limit: 25
recent_question_window: 3
modes:
  technical:
    topics: [a]
    style: s
    rubric: r
`)
	if _, err := prompts.Parse(data); err == nil {
		t.Error("expected error when behavioral mode is missing")
	}
}
