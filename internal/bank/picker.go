package bank

import (
	"math/rand"
	"sync"
	"time"

	"intellitest/internal/domain"
)

// Picker chooses a bank uniformly at random. The source is injectable so tests
// can force a specific bank.
type Picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPicker(rnd *rand.Rand) *Picker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{rnd: rnd}
}

// NewSeededPicker returns a picker with a deterministic sequence.
func NewSeededPicker(seed int64) *Picker {
	return NewPicker(rand.New(rand.NewSource(seed)))
}

// Pick returns one of ids.
func (p *Picker) Pick(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", domain.ErrNoBanks
	}
	p.mu.Lock()
	i := p.rnd.Intn(len(ids))
	p.mu.Unlock()
	return ids[i], nil
}
