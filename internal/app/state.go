package app

import (
	"fmt"
	"time"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
	"intellitest/internal/scoring"
)

// DefaultTimeBudget is the countdown a test starts with, in seconds.
const DefaultTimeBudget = 3600

// Timer warning thresholds, in remaining seconds.
const (
	warningAt = 300
	dangerAt  = 60
)

// Phase is the lifecycle position of a test session.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Submitted
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	default:
		return "not_started"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "not_started":
		*p = NotStarted
	case "in_progress":
		*p = InProgress
	case "submitted":
		*p = Submitted
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// State is one test session. Transition functions take a State and return the
// next one; the receiver's slices are never written.
type State struct {
	ID      string         `json:"id"`
	Phase   Phase          `json:"phase"`
	BankID  string         `json:"bankId"`
	Profile domain.Profile `json:"profile"`

	Answers domain.AnswerSet `json:"answers"`
	Current int              `json:"current"`

	// Budget and Remaining count seconds; the elapsed time Budget-Remaining is
	// the only clock, shared by the countdown and per-question times.
	Budget        int   `json:"budget"`
	Remaining     int   `json:"remaining"`
	QuestionTimes []int `json:"questionTimes"`
	QuestionStart int   `json:"questionStart"`

	StartedAt  time.Time          `json:"startedAt"`
	Submission *domain.Submission `json:"submission,omitempty"`

	// Bank is rehydrated from the bank repository after loading.
	Bank domain.QuestionBank `json:"-"`
}

// Start flattens the bank into N unanswered positions and begins the countdown
// at budget seconds. A bank failing its integrity check is refused.
func Start(b domain.QuestionBank, profile domain.Profile, budget int, now time.Time) (State, error) {
	if err := bank.CheckIntegrity(b); err != nil {
		return State{}, err
	}
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	n := b.Size()
	return State{
		Phase:         InProgress,
		BankID:        b.ID,
		Bank:          b,
		Profile:       profile,
		Answers:       domain.NewAnswerSet(n),
		Budget:        budget,
		Remaining:     budget,
		QuestionTimes: make([]int, n),
		StartedAt:     now.UTC(),
	}, nil
}

// SelectAnswer records value at position, replacing any previous selection.
func SelectAnswer(s State, position int, value string) (State, error) {
	if s.Phase != InProgress {
		return s, &domain.IllegalTransitionError{Op: "select answer", Phase: s.Phase.String()}
	}
	q, err := s.question(position)
	if err != nil {
		return s, err
	}
	if !isOption(q, value) {
		return s, domain.ErrInvalidOption
	}
	next := s.clone()
	next.Answers[position] = value
	return next, nil
}

// GoTo books the time spent on the current question and moves to position.
func GoTo(s State, position int) (State, error) {
	if s.Phase != InProgress {
		return s, &domain.IllegalTransitionError{Op: "go to", Phase: s.Phase.String()}
	}
	if position < 0 || position >= len(s.Answers) {
		return s, domain.ErrPositionOutOfRange
	}
	next := s.flush()
	next.Current = position
	return next, nil
}

// Next moves forward one question; on the last question it only books time.
func Next(s State) (State, error) {
	if s.Phase == InProgress && s.Current >= len(s.Answers)-1 {
		return s.flush(), nil
	}
	return GoTo(s, s.Current+1)
}

// Prev moves back one question; on the first question it only books time.
func Prev(s State) (State, error) {
	if s.Phase == InProgress && s.Current == 0 {
		return s.flush(), nil
	}
	return GoTo(s, s.Current-1)
}

// Tick consumes one second. When the countdown reaches zero the session is
// submitted automatically, exactly once. Ticks outside InProgress are no-ops.
func Tick(s State, now time.Time) (State, *domain.Submission) {
	if s.Phase != InProgress {
		return s, nil
	}
	next := s.clone()
	if next.Remaining > 0 {
		next.Remaining--
	}
	if next.Remaining > 0 {
		return next, nil
	}
	return submit(next, true, now)
}

// Submit scores the session. A session already submitted is returned unchanged
// with a nil submission.
func Submit(s State, now time.Time) (State, *domain.Submission, error) {
	switch s.Phase {
	case Submitted:
		return s, nil, nil
	case InProgress:
		next, sub := submit(s.clone(), false, now)
		return next, sub, nil
	default:
		return s, nil, &domain.IllegalTransitionError{Op: "submit", Phase: s.Phase.String()}
	}
}

func submit(s State, auto bool, now time.Time) (State, *domain.Submission) {
	s = s.flush()
	result := scoring.BuildResult(s.Bank, s.Answers, s.Elapsed(), s.Profile, now)
	sub := &domain.Submission{SessionID: s.ID, Result: result, Auto: auto}
	s.Phase = Submitted
	s.Submission = sub
	return s, sub
}

// Elapsed is the number of seconds consumed so far.
func (s State) Elapsed() int {
	return s.Budget - s.Remaining
}

// Total is the number of questions in the session.
func (s State) Total() int {
	return len(s.Answers)
}

// Answered reports whether position holds a selection.
func (s State) Answered(position int) bool {
	return s.Answers.Answered(position)
}

// AnsweredCount is the number of positions holding a selection.
func (s State) AnsweredCount() int {
	return s.Answers.Count()
}

// TimerLevel is "danger" in the last minute, "warning" in the last five and
// "" otherwise.
func (s State) TimerLevel() string {
	switch {
	case s.Remaining <= dangerAt:
		return "danger"
	case s.Remaining <= warningAt:
		return "warning"
	default:
		return ""
	}
}

func (s State) question(position int) (domain.Question, error) {
	questions := s.Bank.Flatten()
	if position < 0 || position >= len(s.Answers) || position >= len(questions) {
		return domain.Question{}, domain.ErrPositionOutOfRange
	}
	return questions[position], nil
}

// flush adds the seconds spent on the current question to its accumulator and
// restarts the per-question marker.
func (s State) flush() State {
	next := s.clone()
	elapsed := next.Elapsed()
	if next.Current >= 0 && next.Current < len(next.QuestionTimes) {
		next.QuestionTimes[next.Current] += elapsed - next.QuestionStart
	}
	next.QuestionStart = elapsed
	return next
}

func (s State) clone() State {
	next := s
	next.Answers = s.Answers.Clone()
	next.QuestionTimes = append([]int(nil), s.QuestionTimes...)
	return next
}

func isOption(q domain.Question, value string) bool {
	if value == "" {
		return false
	}
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}
