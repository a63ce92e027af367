// Package prompts holds the per-mode data tables and the prompt builders for
// question generation, answer evaluation and end-of-session coaching.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/interviewcoach/backend/internal/domain/interview"
)

//go:embed modes.yaml
var defaultModes []byte

// Profile is everything mode-specific: the topic rotation, the question
// register and the grading rubric.
type Profile struct {
	Label  string   `yaml:"label"`
	Topics []string `yaml:"topics"`
	Style  string   `yaml:"style"`
	Rubric string   `yaml:"rubric"`
}

// Table maps each mode to its profile.
type Table struct {
	QuestionWordLimit    int                `yaml:"question_word_limit"`
	RecentQuestionWindow int                `yaml:"recent_question_window"`
	Modes                map[string]Profile `yaml:"modes"`
}

// Parse decodes and validates a mode table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse mode table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("validate mode table: %w", err)
	}
	return &t, nil
}

// Default returns the embedded mode table. It panics if the embedded file is
// broken, which can only happen at build time.
func Default() *Table {
	t, err := Parse(defaultModes)
	if err != nil {
		panic("prompts: embedded modes.yaml: " + err.Error())
	}
	return t
}

func (t *Table) validate() error {
	if t.QuestionWordLimit <= 0 {
		return errors.New("question_word_limit must be positive")
	}
	if t.RecentQuestionWindow <= 0 {
		return errors.New("recent_question_window must be positive")
	}
	for _, m := range interview.Modes {
		p, ok := t.Modes[string(m)]
		if !ok {
			return fmt.Errorf("mode %q is missing", m)
		}
		if len(p.Topics) == 0 {
			return fmt.Errorf("mode %q has no topics", m)
		}
		if p.Style == "" {
			return fmt.Errorf("mode %q has no style", m)
		}
		if p.Rubric == "" {
			return fmt.Errorf("mode %q has no rubric", m)
		}
	}
	return nil
}

// Profile returns the profile for mode.
func (t *Table) Profile(mode interview.Mode) (Profile, error) {
	p, ok := t.Modes[string(mode)]
	if !ok {
		return Profile{}, &interview.ValidationError{Field: "mode", Reason: fmt.Sprintf("%q has no prompt profile", mode)}
	}
	return p, nil
}

// Topic picks the round's topic hint. Rounds are 1-based; every topic is
// used once before any repeats.
func (p Profile) Topic(round int) string {
	if round < 1 {
		round = 1
	}
	return p.Topics[(round-1)%len(p.Topics)]
}
