package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
)

// BankRepository caches bank documents in Redis and falls back to a loader on cache miss.
// Documents are stored as:  SET bank:{bankID} {json document}
// The id list is stored as: RPUSH banks:ids {bankID...}
type BankRepository struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBankRepository(client *redis.Client, loader bank.Loader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	if b, ok := r.cached(ctx, bankID); ok {
		return b, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// another caller may have filled the cache meanwhile
		if b, ok := r.cached(ctx, bankID); ok {
			return b, nil
		}

		b, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		raw, err := bank.Encode(b)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if err := r.client.Set(ctx, r.bankKey(bankID), raw, r.ttlWithJitter()).Err(); err != nil {
			glog.Warningf("cache bank %s: %v", bankID, err)
		}
		return b, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// cached reads a bank from Redis. A document that no longer passes validation
// is evicted and treated as a miss.
func (r *BankRepository) cached(ctx context.Context, bankID string) (domain.QuestionBank, bool) {
	raw, err := r.client.Get(ctx, r.bankKey(bankID)).Bytes()
	if err != nil {
		return domain.QuestionBank{}, false
	}
	b, err := bank.Parse(raw)
	if err != nil || b.ID != bankID {
		glog.Warningf("evicting cached bank %s: %v", bankID, err)
		_ = r.client.Del(ctx, r.bankKey(bankID)).Err()
		return domain.QuestionBank{}, false
	}
	return b, true
}

func (r *BankRepository) ListBanks(ctx context.Context) ([]string, error) {
	ids, err := r.client.LRange(ctx, r.idsKey(), 0, -1).Result()
	if err == nil && len(ids) > 0 {
		return ids, nil
	}

	result, err, _ := r.sf.Do(r.idsKey(), func() (interface{}, error) {
		ids, err := r.loader.ListBanks(ctx)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return ids, nil
		}
		values := make([]interface{}, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, r.idsKey())
		pipe.RPush(ctx, r.idsKey(), values...)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, r.idsKey(), ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			glog.Warningf("cache bank ids: %v", err)
		}
		return ids, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list banks")
	}
	return append([]string(nil), result.([]string)...), nil
}

// Invalidate drops the cached document of bankID and the id list.
func (r *BankRepository) Invalidate(ctx context.Context, bankID string) error {
	return r.client.Del(ctx, r.bankKey(bankID), r.idsKey()).Err()
}

func (r *BankRepository) bankKey(bankID string) string {
	return "bank:" + bankID
}

func (r *BankRepository) idsKey() string {
	return "banks:ids"
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
