package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ucid-labs/ucid/internal/metrics"
	"github.com/ucid-labs/ucid/internal/notification"
	"github.com/ucid-labs/ucid/internal/qrpayload"
	"github.com/ucid-labs/ucid/internal/session"
	"github.com/ucid-labs/ucid/internal/wallet"
)

// DetailStep is the position inside the wallet detail flow.
type DetailStep int

const (
	StepSeedPhrase DetailStep = iota
	StepPrivateKey
	StepConfirmation
)

func (s DetailStep) String() string {
	switch s {
	case StepSeedPhrase:
		return "seedPhrase"
	case StepPrivateKey:
		return "privateKey"
	case StepConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("DetailStep(%d)", int(s))
	}
}

// MarshalText renders the step name in JSON.
func (s DetailStep) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Detail is the state of the wallet detail flow for one wallet.
type Detail struct {
	WalletID   string     `json:"walletId"`
	WalletName string     `json:"walletName"`
	Step       DetailStep `json:"step"`
	ViewMode   bool       `json:"viewMode"`
	SeedPhrase string     `json:"seedPhrase,omitempty"`
	PrivateKey string     `json:"privateKey,omitempty"`
}

// Wallet icons used for wallets that are not in the provider catalog.
const (
	IconCustom  = "💼"
	IconScanned = "📱"
	IconManual  = "📥"
)

// ImportSource tells where imported credentials came from.
type ImportSource int

const (
	SourceManual ImportSource = iota
	SourceScanned
)

// WalletSession is the session surface the wallet flows use.
type WalletSession interface {
	Wallet(id string) (wallet.Wallet, bool)
	AddWallet(ctx context.Context, w wallet.Wallet) *session.Ack
	RemoveWallet(ctx context.Context, id string) *session.Ack
	UpdateWallet(ctx context.Context, id string, patch wallet.Patch) *session.Ack
}

// CredentialRegistry is the registry surface the wallet flows use.
type CredentialRegistry interface {
	Register(ctx context.Context, uid, seedPhrase string, wallets []wallet.Wallet) (bool, error)
	Verify(ctx context.Context, uid, seedPhrase string) (bool, error)
}

// WalletFlow attaches, edits and removes the session's external wallets.
type WalletFlow struct {
	session  WalletSession
	registry CredentialRegistry
	gate     *Gate
	notifier notification.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu     sync.Mutex
	detail *Detail
}

// NewWalletFlow wires the wallet flows. notifier may be nil.
func NewWalletFlow(sess WalletSession, registry CredentialRegistry, gate *Gate, notifier notification.Notifier, logger *slog.Logger, m *metrics.Metrics) *WalletFlow {
	return &WalletFlow{
		session:  sess,
		registry: registry,
		gate:     gate,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "wallet_flow")),
		metrics:  m,
		now:      time.Now,
	}
}

// Current returns the open detail flow, if any.
func (f *WalletFlow) Current() (Detail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detail == nil {
		return Detail{}, false
	}
	return *f.detail, true
}

// ConnectProvider adds a catalog wallet and opens its detail flow in edit
// mode. A wallet that is already connected is only reachable through Begin.
func (f *WalletFlow) ConnectProvider(ctx context.Context, providerID string) (Detail, *session.Ack, error) {
	p, ok := wallet.LookupProvider(providerID)
	if !ok {
		return Detail{}, nil, ErrUnknownProvider
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, connected := f.session.Wallet(p.ID); connected {
		return Detail{}, nil, ErrWalletConnected
	}
	ack := f.session.AddWallet(ctx, p.Wallet())
	f.detail = &Detail{WalletID: p.ID, WalletName: p.Name, Step: StepSeedPhrase}
	f.metrics.WorkflowEvent("wallet_detail", "connect")
	notification.Notify(ctx, f.notifier, notification.KindSuccess, fmt.Sprintf("%s connected", p.Name))
	return *f.detail, ack, nil
}

// Begin opens the detail flow for an existing wallet using an action token,
// which is consumed. Wallets with stored details open in view mode, except
// after a face scan for an edit.
func (f *WalletFlow) Begin(token string) (Detail, error) {
	pending, err := f.gate.Redeem(token)
	if err != nil {
		return Detail{}, err
	}
	return f.BeginPending(pending)
}

// BeginPending opens the detail flow for an already verified action.
func (f *WalletFlow) BeginPending(pending PendingAction) (Detail, error) {
	w, ok := f.session.Wallet(pending.WalletID)
	if !ok {
		return Detail{}, ErrUnknownWallet
	}

	view := w.HasDetails()
	if pending.Method == MethodFaceScan && pending.Action != ActionShow {
		view = false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.detail = &Detail{
		WalletID:   w.ID,
		WalletName: w.Name,
		Step:       StepSeedPhrase,
		ViewMode:   view,
		SeedPhrase: w.SeedPhrase,
		PrivateKey: w.PrivateKey,
	}
	f.metrics.WorkflowEvent("wallet_detail", "begin")
	return *f.detail, nil
}

// ToggleMode flips between view and edit mode.
func (f *WalletFlow) ToggleMode() (Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detail == nil {
		return Detail{}, ErrNoActiveDetail
	}
	f.detail.ViewMode = !f.detail.ViewMode
	return *f.detail, nil
}

// SubmitSeedPhrase advances past the seed phrase step. In edit mode all 12
// words are required.
func (f *WalletFlow) SubmitSeedPhrase(words []string) (Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detail == nil {
		return Detail{}, ErrNoActiveDetail
	}
	if f.detail.Step != StepSeedPhrase {
		return *f.detail, ErrInvalidTransition
	}
	if !f.detail.ViewMode {
		phrase, err := JoinWords(words)
		if err != nil {
			return *f.detail, err
		}
		f.detail.SeedPhrase = phrase
	}
	f.detail.Step = StepPrivateKey
	return *f.detail, nil
}

// SubmitPrivateKey finishes the flow. In edit mode the key is required and
// the wallet is updated in the session; view mode writes nothing.
func (f *WalletFlow) SubmitPrivateKey(ctx context.Context, privateKey string) (Detail, *session.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detail == nil {
		return Detail{}, nil, ErrNoActiveDetail
	}
	if f.detail.Step != StepPrivateKey {
		return *f.detail, nil, ErrInvalidTransition
	}

	if f.detail.ViewMode {
		f.detail.Step = StepConfirmation
		return *f.detail, nil, nil
	}

	privateKey = strings.TrimSpace(privateKey)
	if privateKey == "" {
		return *f.detail, nil, ErrPrivateKeyRequired
	}
	seed := f.detail.SeedPhrase
	patch := wallet.Patch{SeedPhrase: &seed, PrivateKey: &privateKey}
	ack := f.session.UpdateWallet(ctx, f.detail.WalletID, patch)

	f.detail.PrivateKey = privateKey
	f.detail.Step = StepConfirmation
	f.metrics.WorkflowEvent("wallet_detail", "saved")
	notification.Notify(ctx, f.notifier, notification.KindSuccess, fmt.Sprintf("%s details saved", f.detail.WalletName))
	return *f.detail, ack, nil
}

// Close abandons the detail flow.
func (f *WalletFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detail = nil
}

// Remove disconnects a wallet. No authentication is needed.
func (f *WalletFlow) Remove(ctx context.Context, id string) *session.Ack {
	f.mu.Lock()
	if f.detail != nil && f.detail.WalletID == id {
		f.detail = nil
	}
	f.mu.Unlock()

	notification.Notify(ctx, f.notifier, notification.KindInfo, "Wallet disconnected")
	return f.session.RemoveWallet(ctx, id)
}

// AddCustomWallet registers a wallet that is not in the catalog under a
// generated id and adds it to the session.
func (f *WalletFlow) AddCustomWallet(ctx context.Context, name string, words []string, privateKey string) (wallet.Wallet, *session.Ack, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return wallet.Wallet{}, nil, ErrNameRequired
	}
	phrase, err := JoinWords(words)
	if err != nil {
		return wallet.Wallet{}, nil, err
	}
	privateKey = strings.TrimSpace(privateKey)
	if privateKey == "" {
		return wallet.Wallet{}, nil, ErrPrivateKeyRequired
	}

	id := "custom-" + ulid.Make().String()
	ok, err := f.registry.Register(ctx, id, phrase, nil)
	if err != nil {
		return wallet.Wallet{}, nil, err
	}
	if !ok {
		return wallet.Wallet{}, nil, &ImportError{UID: id, Message: "Failed to register new wallet. Please try again."}
	}

	w := wallet.Wallet{ID: id, Name: name, Icon: IconCustom, SeedPhrase: phrase, PrivateKey: privateKey}
	ack := f.session.AddWallet(ctx, w)
	f.metrics.WorkflowEvent("wallet_detail", "custom")
	notification.Notify(ctx, f.notifier, notification.KindSuccess, fmt.Sprintf("%s added", name))
	return w, ack, nil
}

// ImportCredentials adds a wallet for a UID/seed pair. A pair the registry
// verifies is added as-is; an unknown pair is registered first.
func (f *WalletFlow) ImportCredentials(ctx context.Context, uid, seedPhrase string, source ImportSource) (wallet.Wallet, *session.Ack, error) {
	uid = strings.TrimSpace(uid)
	seedPhrase = strings.Join(strings.Fields(seedPhrase), " ")
	if uid == "" {
		return wallet.Wallet{}, nil, ErrUIDRequired
	}
	if seedPhrase == "" {
		return wallet.Wallet{}, nil, ErrSeedRequired
	}

	known, err := f.registry.Verify(ctx, uid, seedPhrase)
	if err != nil {
		return wallet.Wallet{}, nil, err
	}
	if !known {
		ok, err := f.registry.Register(ctx, uid, seedPhrase, nil)
		if err != nil {
			return wallet.Wallet{}, nil, err
		}
		if !ok {
			notification.Notify(ctx, f.notifier, notification.KindError, "Invalid seed phrase or UID")
			return wallet.Wallet{}, nil, &ImportError{UID: uid, Message: "Invalid seed phrase or UID. Please check your details and try again."}
		}
	}

	w := wallet.Wallet{ID: uid, Name: importedName(source, !known, f.now()), Icon: importedIcon(source), SeedPhrase: seedPhrase}
	ack := f.session.AddWallet(ctx, w)
	f.logger.Info("wallet_flow.import completed", slog.String("uid", uid), slog.Bool("registered", !known))
	notification.Notify(ctx, f.notifier, notification.KindSuccess, "Wallet imported successfully")
	return w, ack, nil
}

// ImportScanned parses a QR payload and imports its credentials.
func (f *WalletFlow) ImportScanned(ctx context.Context, payload string) (wallet.Wallet, *session.Ack, error) {
	creds, err := qrpayload.Parse(strings.TrimSpace(payload))
	if err != nil {
		notification.Notify(ctx, f.notifier, notification.KindError, "Invalid QR code format")
		return wallet.Wallet{}, nil, err
	}
	return f.ImportCredentials(ctx, creds.UID, creds.SeedPhrase, SourceScanned)
}

func importedName(source ImportSource, fresh bool, now time.Time) string {
	date := now.Format("2006-01-02")
	switch {
	case source == SourceScanned && fresh:
		return "New Scanned Wallet (" + date + ")"
	case source == SourceScanned:
		return "Scanned Wallet (" + date + ")"
	case fresh:
		return "New Wallet (" + date + ")"
	default:
		return "Imported Wallet (" + date + ")"
	}
}

func importedIcon(source ImportSource) string {
	if source == SourceScanned {
		return IconScanned
	}
	return IconManual
}
