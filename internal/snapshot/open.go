package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"resumesync/internal/config"
)

// Open returns the store selected by cfg.Backend.
func Open(cfg config.SnapshotConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "badger":
		return OpenBadger(cfg.Path, logger)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping snapshot redis: %w", err)
		}
		return NewRedisStore(client, "resumesync:snapshot:"), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
