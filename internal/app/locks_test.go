package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

type mapStore struct {
	mu     sync.Mutex
	states map[string]State
}

func (m *mapStore) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.ID] = s
	return nil
}

func (m *mapStore) Load(_ context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	if !ok {
		return State{}, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

type loaderBanks struct {
	loader bank.Loader
}

func (l loaderBanks) GetBank(ctx context.Context, id string) (domain.QuestionBank, error) {
	return l.loader.LoadBank(ctx, id)
}

func (l loaderBanks) ListBanks(ctx context.Context) ([]string, error) {
	return l.loader.ListBanks(ctx)
}

func (s *Service) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func TestSessionLocksAreReleased(t *testing.T) {
	ctx := context.Background()
	service := NewService(&mapStore{states: make(map[string]State)}, loaderBanks{bank.NewEmbeddedLoader()},
		WithPicker(bank.NewSeededPicker(7)),
		WithIDGenerator(func() string { return "live" }),
	)

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("ghost-%d", i)
		if _, err := service.Submit(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("submit %s: expected ErrSessionNotFound, got %v", id, err)
		}
		if _, err := service.Next(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("next %s: expected ErrSessionNotFound, got %v", id, err)
		}
	}
	if n := service.lockCount(); n != 0 {
		t.Fatalf("unknown sessions left %d locks behind", n)
	}

	if _, err := service.Start(ctx, domain.Profile{
		Email: "ada@example.com", Age: 36, Sex: "female", Ethnicity: "european",
		SubRegion: "Western Europe", CountryOfOrigin: "United Kingdom",
		CountryResiding: "United Kingdom", Education: "Doctoral Degree",
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Submit(ctx, "live"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := service.Tick(ctx, "live"); err != nil {
		t.Fatalf("tick after submit: %v", err)
	}
	if n := service.lockCount(); n != 0 {
		t.Fatalf("submitted session kept %d locks", n)
	}
}

func TestSessionLockSerializesConcurrentCallers(t *testing.T) {
	ctx := context.Background()
	store := &mapStore{states: make(map[string]State)}
	service := NewService(store, loaderBanks{bank.NewEmbeddedLoader()})

	b, err := bank.NewEmbeddedLoader().LoadBank(ctx, "test-a")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	st, err := Start(b, domain.Profile{}, 0, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	st.ID = "busy"
	_ = store.Save(ctx, st)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = service.Tick(ctx, "busy")
		}()
	}
	wg.Wait()

	got, _ := store.Load(ctx, "busy")
	if got.Remaining != DefaultTimeBudget-50 {
		t.Fatalf("expected 50 serialized ticks, remaining %d", got.Remaining)
	}
	if n := service.lockCount(); n != 0 {
		t.Fatalf("expected empty lock registry, got %d", n)
	}
}
