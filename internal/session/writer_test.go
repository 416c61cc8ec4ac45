package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ucid-labs/ucid/internal/logging"
	"github.com/ucid-labs/ucid/internal/wallet"
)

type recordingRegistry struct {
	mu     sync.Mutex
	writes [][]wallet.Wallet
	gate   chan struct{}
	fail   bool
}

func (r *recordingRegistry) UpdateConnectedWallets(_ context.Context, _ string, wallets []wallet.Wallet) (bool, error) {
	if r.gate != nil {
		<-r.gate
	}
	if r.fail {
		return false, errors.New("storage unavailable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, wallets)
	return true, nil
}

func TestWriterAppliesInOrder(t *testing.T) {
	reg := &recordingRegistry{}
	w := NewWriter(reg, logging.Discard(), nil)
	defer w.Close(context.Background())

	var acks []*Ack
	for i := 1; i <= 5; i++ {
		list := make([]wallet.Wallet, i)
		acks = append(acks, w.Enqueue("UID", list))
	}
	for _, ack := range acks {
		waitAck(t, ack)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i, got := range reg.writes {
		if len(got) != i+1 {
			t.Fatalf("write %d applied out of order: %d wallets", i, len(got))
		}
	}
}

func TestAckWaitHonoursContext(t *testing.T) {
	reg := &recordingRegistry{gate: make(chan struct{})}
	w := NewWriter(reg, logging.Discard(), nil)

	ack := w.Enqueue("UID", []wallet.Wallet{{ID: "a"}})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := ack.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(reg.gate)
	if !waitAck(t, ack) {
		t.Fatalf("write should still complete after the waiter gave up")
	}
	w.Close(context.Background())
}

func TestWriterReportsFailure(t *testing.T) {
	reg := &recordingRegistry{fail: true}
	w := NewWriter(reg, logging.Discard(), nil)
	defer w.Close(context.Background())

	ok, err := w.Enqueue("UID", nil).Wait(context.Background())
	if ok || err == nil {
		t.Fatalf("expected failure, ok=%v err=%v", ok, err)
	}
}

func TestWriterRejectsAfterClose(t *testing.T) {
	w := NewWriter(&recordingRegistry{}, logging.Discard(), nil)
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Enqueue("UID", nil).Wait(context.Background()); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
}
