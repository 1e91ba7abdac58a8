package cli

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/tendril/internal/adapters/file"
	"github.com/aretw0/tendril/internal/adapters/redis"
	"github.com/aretw0/tendril/internal/adapters/sqlite"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/ports"
)

// OpenStore builds the save-slot store the configuration names. The
// returned closer releases driver resources; for driverless stores it is
// a no-op but never nil.
func OpenStore(cfg config.StoreConfig, baseDir string) (ports.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), noop, nil

	case "file":
		path := cfg.Path
		if path == "" {
			path = ".tendril/slots"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return file.New(path), noop, nil

	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = ".tendril/slots.db"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil

	case "redis":
		var opts []redis.Option
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
