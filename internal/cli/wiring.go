package cli

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"intellitest/internal/app"
	"intellitest/internal/bank"
	"intellitest/internal/config"
	"intellitest/internal/infra/memory"
	pgbanks "intellitest/internal/infra/postgres"
	redisinfra "intellitest/internal/infra/redis"
)

// backends holds the connections opened for a command.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.close()
			return nil, errors.Wrap(err, "connect redis")
		}
	}
	if cfg.Banks.Source == config.SourcePostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, errors.Wrap(err, "connect postgres")
		}
		b.pool = pool
	}
	return b, nil
}

func (b *backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// bankLoader returns the configured source of bank documents.
func (b *backends) bankLoader(cfg config.Config) bank.Loader {
	switch cfg.Banks.Source {
	case config.SourceDir:
		return bank.NewDirLoader(cfg.Banks.Dir)
	case config.SourcePostgres:
		return pgbanks.NewBankLoader(b.pool)
	default:
		return bank.NewEmbeddedLoader()
	}
}

// bankRepository caches the configured source in Redis when available and in
// process memory otherwise.
func (b *backends) bankRepository(cfg config.Config) app.BankRepository {
	ttl := config.TTLDuration(cfg.Banks.TTL, 10*time.Minute)
	loader := b.bankLoader(cfg)
	if b.redis != nil {
		return redisinfra.NewBankRepository(b.redis, loader, ttl)
	}
	return memory.NewBankRepository(loader, ttl)
}

// sessionStore keeps sessions in Redis when available. The in-memory fallback
// expires sessions with the same ttl and sweeps them until ctx is done.
func (b *backends) sessionStore(ctx context.Context, cfg config.Config) app.SessionRepository {
	if b.redis != nil {
		return redisinfra.NewSessionStore(b.redis, cfg.SessionTTL())
	}
	glog.Info("redis not configured, keeping sessions in memory")
	store := memory.NewSessionStoreWithTTL(cfg.SessionTTL())
	go store.RunSweeper(ctx, time.Minute)
	return store
}

func openBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}
