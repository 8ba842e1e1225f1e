package docstore

import (
	"context"
	"fmt"
	"log/slog"
)

// Bootstrap performs idempotent first-run initialization: every fixed
// collection whose backing storage is absent is created with its seed
// records (or empty if seeds has no entry for it). Collections that already
// exist are left untouched, so running Bootstrap twice is a no-op for them.
func Bootstrap(ctx context.Context, store Store, seeds map[string][]Record) error {
	for _, name := range collections {
		ok, err := store.Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: check %s: %w", ErrBootstrap, name, err)
		}
		if ok {
			continue
		}
		rows := seeds[name]
		if err := store.Write(ctx, name, rows); err != nil {
			return fmt.Errorf("%w: seed %s: %w", ErrBootstrap, name, err)
		}
		slog.InfoContext(ctx, "Seeded collection", "collection", name, "records", len(rows))
	}
	return nil
}
