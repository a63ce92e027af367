package prompts

import (
	"fmt"
	"strings"

	"github.com/interviewcoach/backend/internal/domain/interview"
)

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

const interviewerSystem = `You are a professional interviewer.
Your only output is one complete interview question in English.
Never add explanations, numbering, or introductions such as "Here is a question".
The question must be specific and relevant to the requested focus, never generic.`

const judgeSystem = `You are an interview judge. You grade one answer at a time
and reply with a score and one short sentence of feedback, nothing else.`

const coachSystem = `You are a concise interview coach. You only use the evidence
you are given and never invent strengths that the evidence does not show.`

// Question builds the request for round's question. recent holds previously
// asked questions, oldest first; only the last RecentQuestionWindow are
// quoted back as off-limits.
func (t *Table) Question(mode interview.Mode, recent []string, round int) (Prompt, error) {
	p, err := t.Profile(mode)
	if err != nil {
		return Prompt{}, err
	}

	window := recent
	if len(window) > t.RecentQuestionWindow {
		window = window[len(window)-t.RecentQuestionWindow:]
	}

	var b strings.Builder
	b.WriteString("Generate exactly ONE interview question.\n\n")
	b.WriteString("STYLE:\n")
	b.WriteString(p.Style)
	fmt.Fprintf(&b, "\n- Keep it short (at most %d words).\n\n", t.QuestionWordLimit)
	fmt.Fprintf(&b, "FOCUS OF ROUND %d: %s\n\n", round, p.Topic(round))
	b.WriteString("DO NOT repeat, rephrase, or closely resemble any of these recent questions:\n")
	if len(window) == 0 {
		b.WriteString("(none)\n")
	}
	for _, q := range window {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	fmt.Fprintf(&b, "\nReturn only the text of one new %s question.", mode)

	return Prompt{System: interviewerSystem, User: b.String()}, nil
}

// Evaluation builds the grading request for one answered turn.
func (t *Table) Evaluation(mode interview.Mode, question, answer string) (Prompt, error) {
	p, err := t.Profile(mode)
	if err != nil {
		return Prompt{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MODE: %s\n", mode)
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", question)
	fmt.Fprintf(&b, "CANDIDATE ANSWER:\n%s\n\n", answer)
	fmt.Fprintf(&b, "RUBRIC: %s\n\n", p.Rubric)
	b.WriteString("Respond with ONLY this JSON, no markdown:\n")
	b.WriteString(`{"score": <integer 1-5>, "feedback": "<one short sentence>"}`)
	b.WriteString("\nIf you cannot produce JSON, reply exactly as: Score: <1-5>. Feedback: <one short sentence>.")

	return Prompt{System: judgeSystem, User: b.String()}, nil
}

// Coaching builds the end-of-session report request from the transcript and
// the per-turn feedback, in turn order.
func (t *Table) Coaching(mode interview.Mode, transcript, feedback []string) (Prompt, error) {
	p, err := t.Profile(mode)
	if err != nil {
		return Prompt{}, err
	}

	history := "(no history)"
	if len(transcript) > 0 {
		history = strings.Join(transcript, "\n")
	}
	notes := "(no judge notes)"
	if len(feedback) > 0 {
		lines := make([]string, len(feedback))
		for i, f := range feedback {
			lines[i] = fmt.Sprintf("Turn %d: %s", i+1, f)
		}
		notes = strings.Join(lines, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session type: %s.\n", p.Label)
	b.WriteString("Write ONLY these three short markdown sections. No preface, no outro, no code fences.\n\n")
	b.WriteString("### Strengths\n")
	b.WriteString("- At most two strengths found directly in the evidence.\n")
	b.WriteString("- If none are present, write \"- None observed.\"\n\n")
	b.WriteString("### Improvements\n")
	b.WriteString("- Three actionable bullets, each under 16 words, based only on the evidence.\n\n")
	b.WriteString("### Next practice\n")
	b.WriteString("- Exactly one 10-minute mini-task in 3 short steps that targets the weaknesses observed.\n\n")
	b.WriteString("Do NOT invent positive traits that the evidence does not support.\n\n")
	fmt.Fprintf(&b, "HISTORY:\n%s\n\n", history)
	fmt.Fprintf(&b, "JUDGE:\n%s\n", notes)

	return Prompt{System: coachSystem, User: b.String()}, nil
}
