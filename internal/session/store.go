// Package session holds the single active identity of a running instance and
// keeps it in step with the durable store and the credential registry.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ucid-labs/ucid/internal/kvstore"
	"github.com/ucid-labs/ucid/internal/metrics"
	"github.com/ucid-labs/ucid/internal/wallet"
)

// Storage suffixes of the persisted session fields.
const (
	KeyUserName   = "userName"
	KeyUID        = "uid"
	KeySeedPhrase = "seedPhrase"
	KeyWallets    = "wallets"
)

// ErrIdentityExists is returned by Enroll when a different seed phrase is already held.
var ErrIdentityExists = errors.New("session: identity already holds a seed phrase")

// Registry is the credential registry surface used by the session.
type Registry interface {
	WalletWriter
	Register(ctx context.Context, uid, seedPhrase string, wallets []wallet.Wallet) (bool, error)
	Verify(ctx context.Context, uid, seedPhrase string) (bool, error)
	Exists(ctx context.Context, uid string) (bool, error)
	ConnectedWallets(ctx context.Context, uid string) ([]wallet.Wallet, error)
}

// SeedGenerator produces checked 12-word seed phrases.
type SeedGenerator interface {
	GenerateChecked() (string, error)
}

// Deps are the collaborators of a Store.
type Deps struct {
	KV        kvstore.Store
	Registry  Registry
	Seeds     SeedGenerator
	NewUID    func() string
	Namespace string
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// State is a point-in-time copy of the session identity.
type State struct {
	UserName         string          `json:"userName"`
	UID              string          `json:"uid"`
	SeedPhrase       string          `json:"seedPhrase"`
	ConnectedWallets []wallet.Wallet `json:"connectedWallets"`
	IsRegistered     bool            `json:"isRegistered"`
}

// Store is the identity session. All methods are safe for concurrent use.
type Store struct {
	kv        kvstore.Store
	registry  Registry
	seeds     SeedGenerator
	newUID    func() string
	namespace string
	logger    *slog.Logger
	writer    *Writer

	mu         sync.Mutex
	userName   string
	uid        string
	seedPhrase string
	wallets    []wallet.Wallet
}

// Open restores the session from the durable store and starts its registry writer.
func Open(ctx context.Context, d Deps) (*Store, error) {
	if d.KV == nil || d.Registry == nil || d.Seeds == nil || d.NewUID == nil {
		return nil, fmt.Errorf("session: incomplete dependencies")
	}
	logger := d.Logger.With(slog.String("component", "session"))
	s := &Store{
		kv:        d.KV,
		registry:  d.Registry,
		seeds:     d.Seeds,
		newUID:    d.NewUID,
		namespace: d.Namespace,
		logger:    logger,
	}

	var err error
	if s.userName, err = s.read(ctx, KeyUserName); err != nil {
		return nil, err
	}
	if s.uid, err = s.read(ctx, KeyUID); err != nil {
		return nil, err
	}
	if s.seedPhrase, err = s.read(ctx, KeySeedPhrase); err != nil {
		return nil, err
	}
	raw, err := s.read(ctx, KeyWallets)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.wallets); err != nil {
			logger.Warn("session.restore discarded corrupt wallets", slog.Any("error", err))
			s.wallets = nil
		}
	}

	s.writer = NewWriter(d.Registry, logger, d.Metrics)
	logger.Info("session.restored",
		slog.Bool("registered", s.isRegisteredLocked()),
		slog.Int("wallets", len(s.wallets)),
	)
	return s, nil
}

// Snapshot returns a copy of the current identity.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		UserName:         s.userName,
		UID:              s.uid,
		SeedPhrase:       s.seedPhrase,
		ConnectedWallets: wallet.CloneList(s.wallets),
		IsRegistered:     s.isRegisteredLocked(),
	}
}

// IsRegistered reports whether both a user name and a UID are set.
func (s *Store) IsRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRegisteredLocked()
}

// SeedPhrase returns the identity seed phrase, empty when unset.
func (s *Store) SeedPhrase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedPhrase
}

// Wallet returns the connected wallet with id.
func (s *Store) Wallet(id string) (wallet.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := wallet.IndexOf(s.wallets, id); i >= 0 {
		return s.wallets[i], true
	}
	return wallet.Wallet{}, false
}

// SetUserName sets the user name, generating a UID and a seed phrase when
// absent. A freshly generated identity is registered; an existing one pushes
// its wallets to the registry. Registry rejections are logged and storage
// failures returned, but memory is never rolled back.
func (s *Store) SetUserName(ctx context.Context, name string) error {
	return s.enroll(ctx, name, "")
}

// Enroll is SetUserName with a caller-chosen seed phrase, so the phrase shown
// to the user is the one registered.
func (s *Store) Enroll(ctx context.Context, name, seedPhrase string) error {
	return s.enroll(ctx, name, seedPhrase)
}

func (s *Store) enroll(ctx context.Context, name, seedPhrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seedPhrase != "" && s.seedPhrase != "" && s.seedPhrase != seedPhrase {
		return ErrIdentityExists
	}

	var errs []error
	s.userName = name
	errs = append(errs, s.write(ctx, KeyUserName, name))

	if s.uid == "" {
		s.uid = s.newUID()
		errs = append(errs, s.write(ctx, KeyUID, s.uid))
	}

	if s.seedPhrase == "" {
		if seedPhrase == "" {
			generated, err := s.seeds.GenerateChecked()
			if err != nil {
				s.logger.Error("session.seed_generation failed", slog.Any("error", err))
				return errors.Join(append(errs, err)...)
			}
			seedPhrase = generated
		}
		s.seedPhrase = seedPhrase
		errs = append(errs, s.write(ctx, KeySeedPhrase, seedPhrase))

		ok, err := s.registry.Register(ctx, s.uid, s.seedPhrase, s.wallets)
		switch {
		case err != nil:
			s.logger.Error("session.register failed", slog.String("uid", s.uid), slog.Any("error", err))
			errs = append(errs, err)
		case !ok:
			s.logger.Warn("session.register rejected", slog.String("uid", s.uid))
		default:
			s.logger.Info("session.register completed", slog.String("uid", s.uid))
		}
		return errors.Join(errs...)
	}

	if len(s.wallets) > 0 {
		s.writer.Enqueue(s.uid, s.wallets)
	}
	return errors.Join(errs...)
}

// ImportWallet adopts an identity from a seed phrase. With a UID it registers
// an unknown UID or verifies a known one, loading the stored wallets on
// success. Without a UID a new identity is registered. It returns false on
// any registry rejection or failure.
func (s *Store) ImportWallet(ctx context.Context, name, seedPhrase, uid string) bool {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(seedPhrase) == "" {
		s.logger.Warn("session.import rejected", slog.String("reason", "missing name or seed phrase"))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userName = name
	s.write(ctx, KeyUserName, name)

	if uid == "" {
		fresh := s.newUID()
		ok, err := s.registry.Register(ctx, fresh, seedPhrase, s.wallets)
		if err != nil || !ok {
			s.logger.Warn("session.import register failed", slog.String("uid", fresh), slog.Any("error", err))
			return false
		}
		s.adoptLocked(ctx, fresh, seedPhrase)
		s.logger.Info("session.import completed", slog.String("uid", fresh), slog.Bool("new_identity", true))
		return true
	}

	exists, err := s.registry.Exists(ctx, uid)
	if err != nil {
		s.logger.Error("session.import lookup failed", slog.String("uid", uid), slog.Any("error", err))
		return false
	}

	if !exists {
		ok, err := s.registry.Register(ctx, uid, seedPhrase, s.wallets)
		if err != nil || !ok {
			s.logger.Warn("session.import register failed", slog.String("uid", uid), slog.Any("error", err))
			return false
		}
		s.adoptLocked(ctx, uid, seedPhrase)
		s.logger.Info("session.import completed", slog.String("uid", uid), slog.Bool("new_identity", true))
		return true
	}

	ok, err := s.registry.Verify(ctx, uid, seedPhrase)
	if err != nil || !ok {
		s.logger.Warn("session.import verify failed", slog.String("uid", uid), slog.Any("error", err))
		return false
	}
	stored, err := s.registry.ConnectedWallets(ctx, uid)
	if err != nil {
		s.logger.Error("session.import wallets failed", slog.String("uid", uid), slog.Any("error", err))
		return false
	}
	s.adoptLocked(ctx, uid, seedPhrase)
	s.wallets = stored
	s.writeWallets(ctx)
	s.logger.Info("session.import completed", slog.String("uid", uid), slog.Int("wallets", len(stored)))
	return true
}

func (s *Store) adoptLocked(ctx context.Context, uid, seedPhrase string) {
	s.uid = uid
	s.seedPhrase = seedPhrase
	s.write(ctx, KeyUID, uid)
	s.write(ctx, KeySeedPhrase, seedPhrase)
}

// AddWallet appends w unless a wallet with the same id exists. The returned
// ack settles once the registry holds the new list.
func (s *Store) AddWallet(ctx context.Context, w wallet.Wallet) *Ack {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wallet.IndexOf(s.wallets, w.ID) >= 0 {
		return completedAck(false, nil)
	}
	s.wallets = append(wallet.CloneList(s.wallets), w)
	s.logger.Info("session.wallet added", slog.String("wallet_id", w.ID))
	return s.syncLocked(ctx)
}

// RemoveWallet drops the wallet with id.
func (s *Store) RemoveWallet(ctx context.Context, id string) *Ack {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]wallet.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	s.wallets = kept
	s.logger.Info("session.wallet removed", slog.String("wallet_id", id))
	return s.syncLocked(ctx)
}

// UpdateWallet merges patch into the wallet with id.
func (s *Store) UpdateWallet(ctx context.Context, id string, patch wallet.Patch) *Ack {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := wallet.CloneList(s.wallets)
	for i := range updated {
		if updated[i].ID == id {
			updated[i] = patch.Apply(updated[i])
		}
	}
	s.wallets = updated
	s.logger.Info("session.wallet updated",
		slog.String("wallet_id", id),
		slog.Bool("has_seed_phrase", patch.SeedPhrase != nil && *patch.SeedPhrase != ""),
		slog.Bool("has_private_key", patch.PrivateKey != nil && *patch.PrivateKey != ""),
	)
	return s.syncLocked(ctx)
}

func (s *Store) syncLocked(ctx context.Context) *Ack {
	err := s.writeWallets(ctx)
	if !s.isRegisteredLocked() {
		return completedAck(err == nil, err)
	}
	return s.writer.Enqueue(s.uid, s.wallets)
}

// Flush waits for every queued registry write.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Logout waits for queued registry writes, then clears the identity and its
// four durable keys.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.writer.Flush(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := s.uid
	s.userName, s.uid, s.seedPhrase, s.wallets = "", "", "", nil

	var errs []error
	for _, suffix := range []string{KeyUserName, KeyUID, KeySeedPhrase, KeyWallets} {
		if err := s.kv.Remove(ctx, kvstore.Key(s.namespace, suffix)); err != nil {
			s.logger.Error("session.logout remove failed", slog.String("key", suffix), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	s.logger.Info("session.logout completed", slog.String("uid", uid))
	return errors.Join(errs...)
}

// Close drains pending registry writes and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

func (s *Store) isRegisteredLocked() bool {
	return s.userName != "" && s.uid != ""
}

func (s *Store) read(ctx context.Context, suffix string) (string, error) {
	v, _, err := s.kv.Get(ctx, kvstore.Key(s.namespace, suffix))
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", suffix, err)
	}
	return v, nil
}

// write persists a non-empty value; empty values are left untouched.
func (s *Store) write(ctx context.Context, suffix, value string) error {
	if value == "" {
		return nil
	}
	if err := s.kv.Set(ctx, kvstore.Key(s.namespace, suffix), value); err != nil {
		s.logger.Error("session.persist failed", slog.String("key", suffix), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *Store) writeWallets(ctx context.Context) error {
	key := kvstore.Key(s.namespace, KeyWallets)
	if len(s.wallets) == 0 {
		if err := s.kv.Remove(ctx, key); err != nil {
			s.logger.Error("session.persist failed", slog.String("key", KeyWallets), slog.Any("error", err))
			return err
		}
		return nil
	}
	payload, err := json.Marshal(s.wallets)
	if err != nil {
		return err
	}
	return s.write(ctx, KeyWallets, string(payload))
}
