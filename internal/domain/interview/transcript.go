package interview

import "sort"

// Transcript rebuilds the ordered Q/A log from persisted turns. Each turn
// contributes a "Q: ..." line, followed by "A: ..." once answered. The input
// slice is not modified.
func Transcript(turns []Turn) []string {
	ordered := byIndex(turns)

	lines := make([]string, 0, 2*len(ordered))
	for _, t := range ordered {
		lines = append(lines, "Q: "+t.Question)
		if t.Answer != nil {
			lines = append(lines, "A: "+*t.Answer)
		}
	}
	return lines
}

// Questions returns the question texts in index order, oldest first.
func Questions(turns []Turn) []string {
	ordered := byIndex(turns)

	questions := make([]string, len(ordered))
	for i, t := range ordered {
		questions[i] = t.Question
	}
	return questions
}

// Feedback returns the evaluation feedback strings in index order, skipping
// turns that were never evaluated.
func Feedback(turns []Turn) []string {
	var lines []string
	for _, t := range byIndex(turns) {
		if t.Evaluation != nil {
			lines = append(lines, t.Evaluation.Feedback)
		}
	}
	return lines
}

func byIndex(turns []Turn) []Turn {
	ordered := make([]Turn, len(turns))
	copy(ordered, turns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	return ordered
}
