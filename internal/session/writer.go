package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ucid-labs/ucid/internal/metrics"
	"github.com/ucid-labs/ucid/internal/wallet"
)

// ErrWriterClosed is reported by acks for writes enqueued after Close.
var ErrWriterClosed = errors.New("session: registry writer closed")

// Ack is the completion signal of one session mutation.
type Ack struct {
	ID string

	done chan struct{}
	ok   bool
	err  error
}

func newAck() *Ack {
	return &Ack{ID: ulid.Make().String(), done: make(chan struct{})}
}

func completedAck(ok bool, err error) *Ack {
	a := newAck()
	a.complete(ok, err)
	return a
}

func (a *Ack) complete(ok bool, err error) {
	a.ok, a.err = ok, err
	close(a.done)
}

// Done is closed once the outcome is known.
func (a *Ack) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the mutation is settled or ctx ends. The boolean is
// false when the mutation was a no-op or the registry rejected the write.
// Giving up on ctx does not cancel the write.
func (a *Ack) Wait(ctx context.Context) (bool, error) {
	select {
	case <-a.done:
		return a.ok, a.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// WalletWriter is the registry surface the writer needs.
type WalletWriter interface {
	UpdateConnectedWallets(ctx context.Context, uid string, wallets []wallet.Wallet) (bool, error)
}

type job struct {
	uid     string
	wallets []wallet.Wallet
	barrier bool
	ack     *Ack
}

// Writer applies registry wallet-list writes one at a time in enqueue order.
type Writer struct {
	registry WalletWriter
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	queue  []*job
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewWriter starts the writer goroutine.
func NewWriter(registry WalletWriter, logger *slog.Logger, m *metrics.Metrics) *Writer {
	w := &Writer{
		registry: registry,
		logger:   logger,
		metrics:  m,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules a full replacement of uid's wallet list.
func (w *Writer) Enqueue(uid string, wallets []wallet.Wallet) *Ack {
	return w.push(&job{uid: uid, wallets: wallet.CloneList(wallets), ack: newAck()})
}

// Flush waits until every write enqueued before the call has been applied.
func (w *Writer) Flush(ctx context.Context) error {
	ack := w.push(&job{barrier: true, ack: newAck()})
	_, err := ack.Wait(ctx)
	if errors.Is(err, ErrWriterClosed) {
		return nil
	}
	return err
}

// Close stops accepting writes, drains the queue and waits for the goroutine.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) push(j *job) *Ack {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		j.ack.complete(false, ErrWriterClosed)
		return j.ack
	}
	w.queue = append(w.queue, j)
	w.metrics.WriterDepth(len(w.queue))
	w.mu.Unlock()
	w.signal()
	return j.ack
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) next() (*job, bool) {
	for {
		w.mu.Lock()
		if len(w.queue) > 0 {
			j := w.queue[0]
			w.queue[0] = nil
			w.queue = w.queue[1:]
			w.metrics.WriterDepth(len(w.queue))
			w.mu.Unlock()
			return j, true
		}
		if w.closed {
			w.mu.Unlock()
			return nil, false
		}
		w.mu.Unlock()
		<-w.wake
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		j, ok := w.next()
		if !ok {
			return
		}
		if j.barrier {
			j.ack.complete(true, nil)
			continue
		}
		w.apply(j)
	}
}

func (w *Writer) apply(j *job) {
	// Issued writes run to completion regardless of who is waiting.
	ok, err := w.registry.UpdateConnectedWallets(context.Background(), j.uid, j.wallets)
	attrs := []any{
		slog.String("write_id", j.ack.ID),
		slog.String("uid", j.uid),
		slog.Int("wallets", len(j.wallets)),
	}
	switch {
	case err != nil:
		w.logger.Error("session.registry_write failed", append(attrs, slog.Any("error", err))...)
	case !ok:
		w.logger.Warn("session.registry_write rejected", attrs...)
	default:
		w.logger.Debug("session.registry_write applied", attrs...)
	}
	w.metrics.WriterApplied(ok && err == nil)
	j.ack.complete(ok, err)
}
