package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.StoreDriver)
	}
	if cfg.Namespace != "ucid" {
		t.Fatalf("expected ucid namespace, got %q", cfg.Namespace)
	}
	if cfg.NotificationTTL != 3*time.Second {
		t.Fatalf("expected 3s notification ttl, got %s", cfg.NotificationTTL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestLoadRequiresRedisURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing REDIS_URL error")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "etcd")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestValidateRequiresSecretOutsideDev(t *testing.T) {
	cfg := Config{AppEnv: "production", StoreDriver: DriverMemory, Namespace: "ucid", ActionTokenTTL: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected secret requirement")
	}
	cfg.ActionTokenSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAddressKeepsColonPrefix(t *testing.T) {
	cfg := Config{Port: ":9000"}
	if cfg.Address() != ":9000" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}
