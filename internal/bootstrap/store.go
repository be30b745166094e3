package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/binwatch/config"
	"github.com/target/binwatch/internal/adapters/filestore"
	"github.com/target/binwatch/internal/adapters/memstore"
	redisadapter "github.com/target/binwatch/internal/adapters/redis"
	"github.com/target/binwatch/internal/ports"
)

// StoreOptions contains configuration for the session store.
type StoreOptions struct {
	Session config.SessionStoreConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// BuildSessionStore creates the configured session store. The returned close function
// releases any connection the store holds and is never nil.
func BuildSessionStore(ctx context.Context, opts StoreOptions) (ports.SessionStore, func() error, error) {
	noop := func() error { return nil }

	switch opts.Session.Kind {
	case config.StoreKindRedis:
		client, err := ConnectRedis(ctx, RedisOptions{Config: opts.Redis, Logger: opts.Logger})
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		store := redisadapter.NewSessionStoreWithKey(client, opts.Redis.KeyPrefix, opts.Session.Key)
		logStore(ctx, opts.Logger, "redis", "key", store.Key())
		return store, client.Close, nil

	case config.StoreKindMemory:
		logStore(ctx, opts.Logger, "memory")
		return memstore.NewSessionStore(), noop, nil

	case config.StoreKindFile, "":
		store, err := filestore.NewSessionStore(opts.Session.FileDir, opts.Session.Key)
		if err != nil {
			return nil, noop, fmt.Errorf("open session file store: %w", err)
		}
		logStore(ctx, opts.Logger, "file", "path", store.Path())
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported session store %q", opts.Session.Kind)
	}
}

func logStore(ctx context.Context, logger *slog.Logger, kind string, attrs ...any) {
	if logger == nil {
		return
	}
	logger.DebugContext(ctx, "session store ready", append([]any{"kind", kind}, attrs...)...)
}
