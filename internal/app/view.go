package app

import (
	"intellitest/internal/domain"
	"intellitest/internal/scoring"
)

// QuestionView is a question as shown to the test taker, without its answer.
type QuestionView struct {
	Position int           `json:"position"`
	Text     string        `json:"question"`
	Options  []string      `json:"options"`
	Domain   domain.Domain `json:"type"`
	Selected string        `json:"selected,omitempty"`
}

// Snapshot is the read-only view of a session handed to clients.
type Snapshot struct {
	SessionID     string        `json:"sessionId"`
	BankID        string        `json:"bankId"`
	Phase         string        `json:"phase"`
	Current       int           `json:"current"`
	Total         int           `json:"total"`
	Remaining     int           `json:"remaining"`
	Clock         string        `json:"clock"`
	TimerLevel    string        `json:"timerLevel,omitempty"`
	Answered      []bool        `json:"answered"`
	AnsweredCount int           `json:"answeredCount"`
	Question      *QuestionView `json:"question,omitempty"`
}

// View renders the state for clients.
func (s State) View() Snapshot {
	answered := make([]bool, s.Total())
	for i := range answered {
		answered[i] = s.Answered(i)
	}
	snap := Snapshot{
		SessionID:     s.ID,
		BankID:        s.BankID,
		Phase:         s.Phase.String(),
		Current:       s.Current,
		Total:         s.Total(),
		Remaining:     s.Remaining,
		Clock:         scoring.FormatClock(s.Remaining),
		TimerLevel:    s.TimerLevel(),
		Answered:      answered,
		AnsweredCount: s.AnsweredCount(),
	}
	if s.Phase == InProgress {
		if q, err := s.question(s.Current); err == nil {
			snap.Question = &QuestionView{
				Position: s.Current,
				Text:     q.Text,
				Options:  append([]string(nil), q.Options...),
				Domain:   q.Domain,
				Selected: s.Answers[s.Current],
			}
		}
	}
	return snap
}
