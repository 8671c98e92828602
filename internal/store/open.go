package store

import (
	"context"
	"fmt"

	"markscan/internal/config"
)

// Open builds the Store selected by cfg.Backend. The returned func releases
// backend resources and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendDisk:
		s, err := NewDiskStore(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case config.BackendPostgres:
		s, err := OpenPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres store: %w", err)
		}
		return s, s.Close, nil
	case config.BackendS3:
		s, err := NewS3Store(S3Config(cfg.S3))
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
