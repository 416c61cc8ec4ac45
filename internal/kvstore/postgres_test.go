package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	s, err := NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		t.Fatalf("new postgres store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	for _, k := range []string{"ucid_uid", "never_set", "ucid_userName"} {
		if err := s.Remove(ctx, k); err != nil {
			t.Fatalf("reset %s: %v", k, err)
		}
	}
	exerciseStore(t, s)

	// the table is created idempotently and survives a second store
	if err := s.Set(ctx, "ucid_userName", "Alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	again, err := NewPostgres(ctx, pool)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, err := again.Get(ctx, "ucid_userName"); err != nil || !ok || v != "Alice" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Remove(ctx, "ucid_userName"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
