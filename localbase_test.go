package localbase

import (
	"context"
	"strings"
	"testing"

	"github.com/researchhub/localbase/auth"
	"github.com/researchhub/localbase/docstore"
)

func TestOpenBootstrapsAndQueries(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			client, err := Open(ctx, Config{DataDir: t.TempDir(), Backend: backend})
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer func() { _ = client.Close() }()

			rec, err := client.From(docstore.Studies).
				Eq("status", "active").
				Order("created_at", false).
				Limit(1).
				Single().
				Execute(ctx).Record()
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if rec.ID() != "study-focus" {
				t.Errorf("expected most recent active seeded study, got %v", rec)
			}

			session, err := client.Auth().SignInWithPassword(ctx, auth.Credentials{
				Email:    "participant@researchhub.local",
				Password: "anything",
			})
			if err != nil {
				t.Fatalf("sign-in against seed data failed: %v", err)
			}
			if !strings.HasPrefix(session.Token, auth.TokenPrefix+"-") {
				t.Errorf("token %q missing fallback prefix", session.Token)
			}
			if session.User.ID() != docstore.SeedParticipantID {
				t.Errorf("unexpected user: %v", session.User)
			}
		})
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			client, err := Open(ctx, Config{DataDir: dir, Backend: backend})
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			res := client.From(docstore.Studies).Insert(docstore.Record{
				"id":         "study-mine",
				"status":     "active",
				"created_at": "2025-08-01T00:00:00Z",
			}).Execute(ctx)
			if res.Error != nil {
				t.Fatalf("insert failed: %v", res.Error)
			}
			if err := client.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			// Reopen: bootstrap must be a no-op and the insert must survive.
			client, err = Open(ctx, Config{DataDir: dir, Backend: backend})
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer func() { _ = client.Close() }()

			rows, err := client.From(docstore.Studies).Execute(ctx).Records()
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if len(rows) != 4 {
				t.Fatalf("expected 3 seeded studies + 1 inserted, got %d", len(rows))
			}
			if rows[3].ID() != "study-mine" {
				t.Errorf("inserted study lost or reordered: %v", rows)
			}
		})
	}
}

func TestOpenSkipSeed(t *testing.T) {
	ctx := context.Background()
	client, err := Open(ctx, Config{DataDir: t.TempDir(), SkipSeed: true})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	rows, err := client.From(docstore.Users).Execute(ctx).Records()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("SkipSeed must leave collections empty, got %v", rows)
	}
}

func TestOpenCustomSeeds(t *testing.T) {
	ctx := context.Background()
	client, err := Open(ctx, Config{
		DataDir: t.TempDir(),
		Seeds: map[string][]docstore.Record{
			docstore.Users: {{"id": "p1", "email": "p@x.com"}},
		},
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	detail, err := client.Auth().SignInWithPassword(ctx, auth.Credentials{Email: "p@x.com"})
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if detail.User.ID() != "p1" {
		t.Errorf("unexpected user: %v", detail.User)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Config{DataDir: t.TempDir(), Backend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
