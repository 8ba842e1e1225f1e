// Package localbase is ResearchHub's offline fallback backend: a small
// embedded document store with a hosted-client-compatible query builder and
// a stand-in auth provider, used when the real backend is unreachable or
// during offline development.
//
// A Client is constructed explicitly by the application's startup routine
// and passed to consumers; there is no package-level singleton. Opening a
// client bootstraps the store's fixed collections on first run:
//
//	client, err := localbase.Open(ctx, localbase.Config{DataDir: "./data"})
//	...
//	defer client.Close()
//	res := client.From(docstore.Studies).Eq("status", "active").Execute(ctx)
package localbase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/researchhub/localbase/auth"
	"github.com/researchhub/localbase/docstore"
	"github.com/researchhub/localbase/query"
)

// Client is an open handle on the fallback store.
type Client struct {
	store docstore.Store
	auth  *auth.Adapter
}

// Open creates the backing store per cfg, runs the idempotent bootstrap and
// returns a ready-to-use client. Bootstrap failures wrap
// docstore.ErrBootstrap.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	cfg.setDefaults()
	var store docstore.Store
	var err error
	switch cfg.Backend {
	case BackendFile:
		store, err = docstore.NewFileStore(cfg.DataDir)
	case BackendSQLite:
		store, err = docstore.NewSQLiteStore(filepath.Join(cfg.DataDir, "localbase.db"))
	default:
		return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", docstore.ErrBootstrap, err)
	}

	seeds := cfg.Seeds
	if seeds == nil && !cfg.SkipSeed {
		seeds = docstore.DefaultSeeds()
	}
	if err := docstore.Bootstrap(ctx, store, seeds); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Client{store: store, auth: auth.NewAdapter(store)}, nil
}

// From returns a query builder bound to the named collection.
func (c *Client) From(collection string) *query.Builder {
	return query.From(c.store, collection)
}

// Auth returns the fallback auth adapter.
func (c *Client) Auth() *auth.Adapter {
	return c.auth
}

// Store exposes the underlying record store.
func (c *Client) Store() docstore.Store {
	return c.store
}

// Close releases the backing storage.
func (c *Client) Close() error {
	return c.store.Close()
}
