package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

// SessionRepository abstracts how session state is stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, s State) error
	Load(ctx context.Context, sessionID string) (State, error)
	Delete(ctx context.Context, sessionID string) error
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
	ListBanks(ctx context.Context) ([]string, error)
}

// SessionLister is implemented by stores that can enumerate the sessions they
// hold. It lets a restarted process pick up countdowns of live sessions.
type SessionLister interface {
	SessionIDs(ctx context.Context) ([]string, error)
}

// ResultMailer delivers a finished result to the test taker.
type ResultMailer interface {
	SendResult(ctx context.Context, to string, result domain.ScoreResult) error
}

// Service contains the test session use cases.
type Service struct {
	sessions SessionRepository
	banks    BankRepository
	picker   *bank.Picker
	budget   int
	now      func() time.Time
	newID    func() string
	mailer   ResultMailer
	timer    *Countdown
	hub      *hub

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes operations on one session. refs counts holders and
// waiters; the entry leaves the registry when it drops to zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option customizes a Service.
type Option func(*Service)

// WithPicker injects the bank picker, typically seeded in tests.
func WithPicker(p *bank.Picker) Option {
	return func(s *Service) { s.picker = p }
}

// WithTimeBudget overrides the countdown length in seconds.
func WithTimeBudget(seconds int) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.budget = seconds
		}
	}
}

// WithClock is used for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithMailer wires the results email collaborator.
func WithMailer(m ResultMailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithCountdown drives Tick from c once per interval for every started session.
func WithCountdown(c *Countdown) Option {
	return func(s *Service) { s.timer = c }
}

func NewService(sessions SessionRepository, banks BankRepository, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		banks:    banks,
		budget:   DefaultTimeBudget,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		hub:      newHub(),
		locks:    make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.picker == nil {
		s.picker = bank.NewPicker(nil)
	}
	if s.timer != nil {
		s.timer.bind(s.timerTick)
	}
	return s
}

// Start validates the profile, picks a bank at random and begins a session.
func (s *Service) Start(ctx context.Context, profile domain.Profile) (Snapshot, error) {
	if err := profile.Validate(); err != nil {
		return Snapshot{}, err
	}
	ids, err := s.banks.ListBanks(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	bankID, err := s.picker.Pick(ids)
	if err != nil {
		return Snapshot{}, err
	}
	b, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		glog.Errorf("load bank %s: %v", bankID, err)
		return Snapshot{}, err
	}

	now := s.now()
	if profile.Timestamp.IsZero() {
		profile.Timestamp = now.UTC()
	}
	state, err := Start(b, profile, s.budget, now)
	if err != nil {
		glog.Errorf("refusing to start on bank %s: %v", bankID, err)
		return Snapshot{}, err
	}
	state.ID = s.newID()
	if err := s.sessions.Save(ctx, state); err != nil {
		return Snapshot{}, err
	}
	glog.Infof("session %s started on bank %s (%d questions, %ds)", state.ID, bankID, state.Total(), state.Budget)

	if s.timer != nil {
		s.timer.Start(state.ID)
	}
	return state.View(), nil
}

// SelectAnswer records the selected option for a position.
func (s *Service) SelectAnswer(ctx context.Context, sessionID string, position int, value string) (Snapshot, error) {
	state, err := s.transition(ctx, sessionID, "select answer", func(st State) (State, error) {
		return SelectAnswer(st, position, value)
	})
	return state.View(), err
}

// GoTo moves the session to another question.
func (s *Service) GoTo(ctx context.Context, sessionID string, position int) (Snapshot, error) {
	state, err := s.transition(ctx, sessionID, "go to", func(st State) (State, error) {
		return GoTo(st, position)
	})
	return state.View(), err
}

// Next moves forward one question.
func (s *Service) Next(ctx context.Context, sessionID string) (Snapshot, error) {
	state, err := s.transition(ctx, sessionID, "next", Next)
	return state.View(), err
}

// Prev moves back one question.
func (s *Service) Prev(ctx context.Context, sessionID string) (Snapshot, error) {
	state, err := s.transition(ctx, sessionID, "prev", Prev)
	return state.View(), err
}

// Tick consumes one second of the session's countdown. It returns the
// submission when the tick exhausted the budget.
func (s *Service) Tick(ctx context.Context, sessionID string) (*domain.Submission, error) {
	var sub *domain.Submission
	state, err := s.transition(ctx, sessionID, "tick", func(st State) (State, error) {
		var next State
		next, sub = Tick(st, s.now())
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if sub != nil {
		glog.Infof("session %s ran out of time, submitted automatically", sessionID)
		s.finish(state, sub)
		return sub, nil
	}
	if state.Phase == InProgress {
		snap := state.View()
		s.hub.publish(Event{Type: EventTick, SessionID: sessionID, Snapshot: &snap})
	}
	return nil, nil
}

// Submit scores the session. A repeated submit is ignored and returns nil.
func (s *Service) Submit(ctx context.Context, sessionID string) (*domain.Submission, error) {
	var sub *domain.Submission
	state, err := s.transition(ctx, sessionID, "submit", func(st State) (State, error) {
		next, out, err := Submit(st, s.now())
		sub = out
		return next, err
	})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		glog.V(1).Infof("session %s already submitted, ignoring", sessionID)
		return nil, nil
	}
	glog.Infof("session %s submitted: raw=%d iq=%d", sessionID, sub.Result.RawScore, sub.Result.IQ)
	s.finish(state, sub)
	return sub, nil
}

// Snapshot returns the current view of a session.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return state.View(), nil
}

// Result returns the submission of a finished session.
func (s *Service) Result(ctx context.Context, sessionID string) (domain.Submission, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Submission{}, err
	}
	if state.Phase != Submitted || state.Submission == nil {
		return domain.Submission{}, &domain.IllegalTransitionError{Op: "read result", Phase: state.Phase.String()}
	}
	return *state.Submission, nil
}

// Reset discards the session entirely; a retake needs a fresh Start.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	defer s.lock(sessionID)()

	if s.timer != nil {
		s.timer.Stop(sessionID)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.hub.publish(Event{Type: EventReset, SessionID: sessionID})
	s.hub.closeSession(sessionID)
	glog.Infof("session %s reset", sessionID)
	return nil
}

// Subscribe returns a channel of session events starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Service) Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	snap := state.View()
	ch, cancel := s.hub.subscribe(sessionID, Event{Type: EventState, SessionID: sessionID, Snapshot: &snap, Submission: state.Submission})
	return ch, cancel, nil
}

// EmailResult sends the finished result to the address given in the profile.
func (s *Service) EmailResult(ctx context.Context, sessionID string) error {
	sub, err := s.Result(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return errors.New("no mailer configured")
	}
	return s.mailer.SendResult(ctx, sub.Result.Profile.Email, sub.Result)
}

// ResumeCountdowns restarts the countdown of every stored session still in
// progress and returns how many were resumed. Stores that cannot list their
// sessions resume nothing.
func (s *Service) ResumeCountdowns(ctx context.Context) (int, error) {
	lister, ok := s.sessions.(SessionLister)
	if s.timer == nil || !ok {
		return 0, nil
	}
	ids, err := lister.SessionIDs(ctx)
	if err != nil {
		return 0, err
	}
	resumed := 0
	for _, id := range ids {
		state, err := s.sessions.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return resumed, err
		}
		if state.Phase != InProgress {
			continue
		}
		s.timer.Start(id)
		resumed++
	}
	if resumed > 0 {
		glog.Infof("resumed %d session countdowns", resumed)
	}
	return resumed, nil
}

// BankIDs lists the banks a session may be started on.
func (s *Service) BankIDs(ctx context.Context) ([]string, error) {
	return s.banks.ListBanks(ctx)
}

func (s *Service) finish(state State, sub *domain.Submission) {
	if s.timer != nil {
		s.timer.Stop(state.ID)
	}
	snap := state.View()
	s.hub.publish(Event{Type: EventSubmitted, SessionID: state.ID, Snapshot: &snap, Submission: sub})
}

// timerTick is the countdown callback; it reports whether the timer should stop.
func (s *Service) timerTick(ctx context.Context, sessionID string) bool {
	sub, err := s.Tick(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			glog.Errorf("tick session %s: %v", sessionID, err)
		}
		return true
	}
	return sub != nil
}

// transition serializes fn against other operations on the same session and
// persists the outcome. Rejected transitions leave the stored state untouched.
func (s *Service) transition(ctx context.Context, sessionID, op string, fn func(State) (State, error)) (State, error) {
	defer s.lock(sessionID)()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	next, err := fn(state)
	if err != nil {
		var illegal *domain.IllegalTransitionError
		if errors.As(err, &illegal) {
			glog.Warningf("session %s: %v", sessionID, err)
		} else {
			glog.V(1).Infof("session %s: %s rejected: %v", sessionID, op, err)
		}
		return state, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return state, err
	}
	return next, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (State, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if state.Bank.ID == "" {
		b, err := s.banks.GetBank(ctx, state.BankID)
		if err != nil {
			return State{}, err
		}
		state.Bank = b
	}
	return state, nil
}

// lock acquires the session's mutex and returns its release func.
func (s *Service) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
	}
}
