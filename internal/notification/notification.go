package notification

import (
    "context"
    "log/slog"
    "sync"
    "time"

    "github.com/oklog/ulid/v2"
)

// Notification kinds.
const (
    KindSuccess = "success"
    KindError   = "error"
    KindInfo    = "info"
    KindWarning = "warning"
)

// Message describes a transient user-facing notice.
type Message struct {
    ID        string    `json:"id"`
    Kind      string    `json:"type"`
    Body      string    `json:"message"`
    CreatedAt time.Time `json:"createdAt"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// Notify sends a message of kind with body, ignoring a nil notifier.
func Notify(ctx context.Context, n Notifier, kind, body string) {
    if n == nil {
        return
    }
    _ = n.Send(ctx, Message{Kind: kind, Body: body})
}

// LoggerNotifier writes notifications to the logger.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    n.logger.Info("notification", "id", message.ID, "kind", message.Kind, "body", message.Body)
    return nil
}

// Board keeps recent notifications visible until they expire after ttl.
type Board struct {
    ttl  time.Duration
    next Notifier
    now  func() time.Time

    mu     sync.Mutex
    items  []Message
    timers map[string]*time.Timer
}

// NewBoard builds a board forwarding every message to next, which may be nil.
func NewBoard(ttl time.Duration, next Notifier) *Board {
    return &Board{ttl: ttl, next: next, now: time.Now, timers: make(map[string]*time.Timer)}
}

// Send posts message and schedules its dismissal.
func (b *Board) Send(ctx context.Context, message Message) error {
    if message.ID == "" {
        message.ID = ulid.Make().String()
    }
    if message.CreatedAt.IsZero() {
        message.CreatedAt = b.now().UTC()
    }

    b.mu.Lock()
    b.items = append(b.items, message)
    id := message.ID
    b.timers[id] = time.AfterFunc(b.ttl, func() { b.Dismiss(id) })
    b.mu.Unlock()

    if b.next != nil {
        return b.next.Send(ctx, message)
    }
    return nil
}

// Active returns the notifications still on display, oldest first.
func (b *Board) Active() []Message {
    b.mu.Lock()
    defer b.mu.Unlock()
    out := make([]Message, len(b.items))
    copy(out, b.items)
    return out
}

// Dismiss removes a notification early. It reports whether id was shown.
func (b *Board) Dismiss(id string) bool {
    b.mu.Lock()
    defer b.mu.Unlock()
    if t, ok := b.timers[id]; ok {
        t.Stop()
        delete(b.timers, id)
    }
    for i, m := range b.items {
        if m.ID == id {
            b.items = append(b.items[:i:i], b.items[i+1:]...)
            return true
        }
    }
    return false
}

// Close cancels pending dismissals.
func (b *Board) Close() {
    b.mu.Lock()
    defer b.mu.Unlock()
    for id, t := range b.timers {
        t.Stop()
        delete(b.timers, id)
    }
}
