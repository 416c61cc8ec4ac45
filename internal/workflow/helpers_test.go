package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/ucid-labs/ucid/internal/kvstore"
	"github.com/ucid-labs/ucid/internal/logging"
	"github.com/ucid-labs/ucid/internal/mnemonic"
	"github.com/ucid-labs/ucid/internal/registry"
	"github.com/ucid-labs/ucid/internal/session"
	"github.com/ucid-labs/ucid/internal/uid"
)

const testSeed = "abandon ability access account achieve across action address advance advice air animal"

type fixture struct {
	kv       kvstore.Store
	registry *registry.Service
	session  *session.Store
	codes    *RevealCodes
	security *Security
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := kvstore.NewMemory()
	reg := registry.NewService(registry.NewMemoryRepository(), logging.Discard(), nil)
	sess, err := session.Open(context.Background(), session.Deps{
		KV:        kv,
		Registry:  reg,
		Seeds:     mnemonic.New(),
		NewUID:    uid.New,
		Namespace: "ucid",
		Logger:    logging.Discard(),
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { sess.Close(context.Background()) })

	codes := NewRevealCodes(kv, "ucid")
	return &fixture{
		kv:       kv,
		registry: reg,
		session:  sess,
		codes:    codes,
		security: NewSecurity(codes, sess, logging.Discard()),
	}
}

func words(phrase string) []string {
	return mnemonic.Words(phrase)
}

func settle(t *testing.T, ack *session.Ack) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := ack.Wait(ctx)
	if err != nil {
		t.Fatalf("ack: %v", err)
	}
	return ok
}
