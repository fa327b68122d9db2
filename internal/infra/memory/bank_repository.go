package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

// BankRepository caches question banks with TTL to avoid re-reading and
// re-validating documents on every session start.
type BankRepository struct {
	loader bank.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
	ids   []string
	idsAt time.Time
}

type cachedBank struct {
	bank      domain.QuestionBank
	expiresAt time.Time
}

func NewBankRepository(loader bank.Loader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[bankID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.bank, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank:"+bankID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[bankID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.bank, nil
		}
		r.mu.RUnlock()

		b, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[bankID] = cachedBank{bank: b, expiresAt: expiresAt}
		r.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// ListBanks returns the bank ids known to the loader, cached for one TTL.
func (r *BankRepository) ListBanks(ctx context.Context) ([]string, error) {
	now := r.clock()
	r.mu.RLock()
	if r.ids != nil && r.idsAt.After(now) {
		ids := append([]string(nil), r.ids...)
		r.mu.RUnlock()
		return ids, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("list", func() (interface{}, error) {
		ids, err := r.loader.ListBanks(ctx)
		if err != nil {
			return nil, err
		}
		idsAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.ids = ids
		r.idsAt = idsAt
		r.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result.([]string)...), nil
}

// StaticBankLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticBankLoader(banks map[string]domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) (domain.QuestionBank, error) {
	if b, ok := l.banks[bankID]; ok {
		return b, nil
	}
	return domain.QuestionBank{}, domain.ErrBankNotFound
}

func (l *StaticBankLoader) ListBanks(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(l.banks))
	for id := range l.banks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
