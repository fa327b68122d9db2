package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func loadBank(t *testing.T) domain.QuestionBank {
	t.Helper()
	b, err := bank.NewEmbeddedLoader().LoadBank(context.Background(), "test-a")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	return b
}

func started(t *testing.T, budget int) State {
	t.Helper()
	s, err := Start(loadBank(t), domain.Profile{Email: "ada@example.com"}, budget, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func wrongOption(q domain.Question) string {
	for _, opt := range q.Options {
		if opt != q.CorrectAnswer {
			return opt
		}
	}
	return ""
}

func TestStartBeginsCountdown(t *testing.T) {
	s := started(t, 0)
	if s.Phase != InProgress || s.Remaining != DefaultTimeBudget || s.Budget != DefaultTimeBudget {
		t.Fatalf("unexpected start state: phase=%v remaining=%d", s.Phase, s.Remaining)
	}
	if s.Total() != 60 || s.AnsweredCount() != 0 || s.Current != 0 {
		t.Fatalf("expected 60 unanswered questions at position 0, got %d/%d at %d", s.AnsweredCount(), s.Total(), s.Current)
	}
}

func TestStartRefusesBrokenBank(t *testing.T) {
	b := loadBank(t)
	b.Sections[domain.Spatial] = nil
	_, err := Start(b, domain.Profile{}, 0, t0)
	var ierr *domain.DataIntegrityError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestAllCorrectScoresGenius(t *testing.T) {
	s := started(t, 0)
	for i, q := range s.Bank.Flatten() {
		var err error
		if s, err = SelectAnswer(s, i, q.CorrectAnswer); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
	}
	s, sub, err := Submit(s, t0.Add(time.Minute))
	if err != nil || sub == nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Result.RawScore != 60 || sub.Result.IQ != 145 || sub.Result.Classification.Label != "Genius" {
		t.Fatalf("unexpected result raw=%d iq=%d class=%s", sub.Result.RawScore, sub.Result.IQ, sub.Result.Classification.Label)
	}
	if sub.Auto || s.Phase != Submitted {
		t.Fatalf("expected manual submission and Submitted phase")
	}
}

func TestSelectAnswerReplacesPrevious(t *testing.T) {
	s := started(t, 0)
	q := s.Bank.Flatten()[3]
	s, _ = SelectAnswer(s, 3, wrongOption(q))
	next, err := SelectAnswer(s, 3, q.CorrectAnswer)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if next.Answers[3] != q.CorrectAnswer || next.AnsweredCount() != 1 {
		t.Fatalf("expected replaced answer, got %q (%d answered)", next.Answers[3], next.AnsweredCount())
	}
	if s.Answers[3] != wrongOption(q) {
		t.Fatalf("previous state was mutated")
	}
}

func TestSelectAnswerRejectsBadInput(t *testing.T) {
	s := started(t, 0)
	if _, err := SelectAnswer(s, 60, "x"); !errors.Is(err, domain.ErrPositionOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := SelectAnswer(s, 0, "not an option"); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	if _, err := SelectAnswer(s, 0, ""); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected empty value rejected, got %v", err)
	}
}

func TestGoToOutOfRangeDoesNotMutate(t *testing.T) {
	s := started(t, 0)
	s, _ = GoTo(s, 5)
	for _, pos := range []int{-1, 60, 1000} {
		next, err := GoTo(s, pos)
		if !errors.Is(err, domain.ErrPositionOutOfRange) {
			t.Fatalf("goTo(%d): expected out of range, got %v", pos, err)
		}
		if next.Current != 5 {
			t.Fatalf("goTo(%d) moved the session to %d", pos, next.Current)
		}
	}
}

func TestNextAndPrevStopAtBoundaries(t *testing.T) {
	s := started(t, 0)
	s, _ = Prev(s)
	if s.Current != 0 {
		t.Fatalf("prev at start moved to %d", s.Current)
	}
	s, _ = GoTo(s, 59)
	s, _ = Next(s)
	if s.Current != 59 {
		t.Fatalf("next at end moved to %d", s.Current)
	}
	s, _ = Prev(s)
	if s.Current != 58 {
		t.Fatalf("expected 58, got %d", s.Current)
	}
}

func TestQuestionTimesFollowNavigation(t *testing.T) {
	s := started(t, 0)
	tick := func(n int) {
		for i := 0; i < n; i++ {
			s, _ = Tick(s, t0)
		}
	}
	tick(10)
	s, _ = GoTo(s, 4)
	tick(5)
	s, _ = Next(s)
	tick(3)
	s, _ = GoTo(s, 0)
	tick(2)
	s, _, _ = Submit(s, t0)

	if s.QuestionTimes[0] != 12 || s.QuestionTimes[4] != 5 || s.QuestionTimes[5] != 3 {
		t.Fatalf("unexpected per-question times %v", s.QuestionTimes[:6])
	}
	sum := 0
	for _, v := range s.QuestionTimes {
		sum += v
	}
	if sum != s.Elapsed() || s.Submission.Result.TimeSpent != 20 {
		t.Fatalf("times do not add up: sum=%d elapsed=%d timeSpent=%d", sum, s.Elapsed(), s.Submission.Result.TimeSpent)
	}
}

func TestTickAutoSubmitsOnce(t *testing.T) {
	s := started(t, 0)
	submissions := 0
	var last *domain.Submission
	for i := 0; i < DefaultTimeBudget+10; i++ {
		var sub *domain.Submission
		s, sub = Tick(s, t0)
		if sub != nil {
			submissions++
			last = sub
		}
	}
	if submissions != 1 {
		t.Fatalf("expected exactly one auto submission, got %d", submissions)
	}
	if !last.Auto || s.Remaining != 0 || s.Phase != Submitted {
		t.Fatalf("unexpected final state: auto=%v remaining=%d phase=%v", last.Auto, s.Remaining, s.Phase)
	}
	r := last.Result
	if r.RawScore != 0 || r.IQ != 70 || r.Classification.Label != "Borderline" || r.TimeSpent != DefaultTimeBudget {
		t.Fatalf("unexpected timeout result raw=%d iq=%d class=%s spent=%d", r.RawScore, r.IQ, r.Classification.Label, r.TimeSpent)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	s := started(t, 0)
	s, first, err := Submit(s, t0)
	if err != nil || first == nil {
		t.Fatalf("first submit: %v", err)
	}
	again, second, err := Submit(s, t0.Add(time.Hour))
	if err != nil || second != nil {
		t.Fatalf("second submit should be a no-op, got %v %v", second, err)
	}
	if again.Submission != first {
		t.Fatalf("second submit replaced the stored submission")
	}
}

func TestIllegalTransitions(t *testing.T) {
	var fresh State
	var illegal *domain.IllegalTransitionError
	if _, _, err := Submit(fresh, t0); !errors.As(err, &illegal) {
		t.Fatalf("submit before start: expected IllegalTransitionError, got %v", err)
	}
	if _, err := GoTo(fresh, 0); !errors.As(err, &illegal) {
		t.Fatalf("goTo before start: expected IllegalTransitionError, got %v", err)
	}

	s := started(t, 0)
	s, _, _ = Submit(s, t0)
	if _, err := SelectAnswer(s, 0, s.Bank.Flatten()[0].CorrectAnswer); !errors.As(err, &illegal) {
		t.Fatalf("select after submit: expected IllegalTransitionError, got %v", err)
	}
	if _, err := Next(s); !errors.As(err, &illegal) {
		t.Fatalf("next after submit: expected IllegalTransitionError, got %v", err)
	}
	if next, sub := Tick(s, t0); sub != nil || next.Remaining != s.Remaining {
		t.Fatalf("tick after submit should be ignored")
	}
}

func TestTimerLevels(t *testing.T) {
	cases := map[int]string{3600: "", 301: "", 300: "warning", 61: "warning", 60: "danger", 0: "danger"}
	for remaining, want := range cases {
		if got := (State{Remaining: remaining}).TimerLevel(); got != want {
			t.Fatalf("remaining %d: expected %q, got %q", remaining, want, got)
		}
	}
}

func TestViewHidesAnswers(t *testing.T) {
	s := started(t, 90)
	q := s.Bank.Flatten()[0]
	s, _ = SelectAnswer(s, 0, q.CorrectAnswer)
	v := s.View()
	if v.Question == nil || v.Question.Text != q.Text || v.Question.Selected != q.CorrectAnswer {
		t.Fatalf("unexpected question view %+v", v.Question)
	}
	if v.Clock != "01:30" || v.Total != 60 || !v.Answered[0] || v.AnsweredCount != 1 {
		t.Fatalf("unexpected snapshot %+v", v)
	}

	s, _, _ = Submit(s, t0)
	if s.View().Question != nil {
		t.Fatalf("submitted snapshot should not expose a question")
	}
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{NotStarted, InProgress, Submitted} {
		b, _ := p.MarshalText()
		var back Phase
		if err := back.UnmarshalText(b); err != nil || back != p {
			t.Fatalf("phase %v did not survive text encoding: %v", p, err)
		}
	}
	var p Phase
	if err := p.UnmarshalText([]byte("paused")); err == nil {
		t.Fatalf("expected unknown phase error")
	}
}
