package research

import (
	"fmt"
	"strconv"
	"strings"
)

// Ledger holds the clarification questions for a session and the answers
// collected so far. Questions are set at most once and are immutable after
// that; answers are recorded strictly in index order so the answered set is
// always a contiguous prefix [0, NextIndex).
//
// The ledger lives inside the workflow and is rebuilt on replay, so it
// holds plain values only.
type Ledger struct {
	questions []string
	answers   map[int]string
	nextIndex int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{answers: make(map[int]string)}
}

// SetQuestions assigns the question list and resets the cursor. Calling it
// a second time is an invalid-state error.
func (l *Ledger) SetQuestions(questions []string) error {
	if len(l.questions) > 0 {
		return NewInvalidStateError("clarification questions already set")
	}
	l.questions = append([]string(nil), questions...)
	l.nextIndex = 0
	return nil
}

// Questions returns a copy of the question list.
func (l *Ledger) Questions() []string {
	return append([]string(nil), l.questions...)
}

// CurrentQuestion returns the question awaiting an answer, or "" and false
// when the ledger is exhausted or no questions are set.
func (l *Ledger) CurrentQuestion() (string, bool) {
	if l.nextIndex >= len(l.questions) {
		return "", false
	}
	return l.questions[l.nextIndex], true
}

// NextIndex returns the cursor position, which always equals the number of
// recorded answers.
func (l *Ledger) NextIndex() int {
	return l.nextIndex
}

// AnsweredCount returns the number of answers recorded.
func (l *Ledger) AnsweredCount() int {
	return len(l.answers)
}

// RecordAnswer stores the answer for the given index and advances the
// cursor. Answers must arrive strictly in order: an index other than the
// cursor is a validation error, as is an answer that is empty after
// trimming whitespace.
//
// An exact replay of the previous record (same index, same answer) is
// accepted as a no-op so an at-least-once delivery of the same update
// leaves the ledger unchanged.
func (l *Ledger) RecordAnswer(index int, answer string) error {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return NewValidationError("answer cannot be empty")
	}
	if index == l.nextIndex-1 && l.answers[index] == answer {
		return nil
	}
	if index != l.nextIndex {
		return NewValidationError("answer for question %d supplied out of order (expected %d)", index, l.nextIndex)
	}
	if index >= len(l.questions) {
		return NewValidationError("no question at index %d", index)
	}
	l.answers[index] = answer
	l.nextIndex++
	return nil
}

// RecordAllAnswers stores a batch of answers and marks every question
// answered, used by the legacy bulk client path. The map may be incomplete:
// the cursor still jumps to the end of the question list, and enrichment
// later substitutes "No specific preference" for any missing index. Do not
// tighten this; batch callers depend on the lenient behavior.
func (l *Ledger) RecordAllAnswers(answers map[int]string) error {
	if len(answers) == 0 {
		return NewValidationError("clarification responses cannot be empty")
	}
	if len(l.questions) == 0 {
		return NewInvalidStateError("not awaiting clarifications")
	}
	for index, answer := range answers {
		if index < 0 || index >= len(l.questions) {
			continue
		}
		l.answers[index] = answer
	}
	l.nextIndex = len(l.questions)
	return nil
}

// Answer returns the recorded answer for an index.
func (l *Ledger) Answer(index int) (string, bool) {
	answer, ok := l.answers[index]
	return answer, ok
}

// Answers returns the recorded answers keyed "question_<index>", the wire
// convention shared with batch clients.
func (l *Ledger) Answers() map[string]string {
	out := make(map[string]string, len(l.answers))
	for index, answer := range l.answers {
		out[QuestionKey(index)] = answer
	}
	return out
}

// IsComplete reports whether the cursor has passed every question, either
// by ordered answers or by the bulk path marking the ledger complete. An
// empty ledger is trivially complete; callers gate on HasQuestions first.
func (l *Ledger) IsComplete() bool {
	return l.nextIndex >= len(l.questions)
}

// HasQuestions reports whether questions have been set.
func (l *Ledger) HasQuestions() bool {
	return len(l.questions) > 0
}

// QuestionKey formats the wire key for a question index.
func QuestionKey(index int) string {
	return fmt.Sprintf("question_%d", index)
}

// ParseQuestionKey extracts the index from a "question_<index>" key.
func ParseQuestionKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "question_")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
