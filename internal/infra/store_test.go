package infra

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/ucid-labs/ucid/internal/config"
	"github.com/ucid-labs/ucid/internal/logging"
)

func TestOpenStoreSQLite(t *testing.T) {
	cfg := config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "kv.db")}
	store, err := OpenStore(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestOpenStoreRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := config.Config{StoreDriver: config.DriverRedis, RedisURL: "redis://" + mr.Addr()}
	store, err := OpenStore(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), config.Config{StoreDriver: "etcd"}, logging.Discard()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewRedisClientRequiresURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}
}
