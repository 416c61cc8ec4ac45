package registry

import (
    "context"
    "log/slog"
    "sort"
    "sync"

    "github.com/ucid-labs/ucid/internal/metrics"
    "github.com/ucid-labs/ucid/internal/wallet"
)

// Service is the credential registry: UID to seed phrase fingerprint and
// connected wallets. Every mutation reads the whole mapping, changes it and
// writes it back. Calls within one process are serialized; concurrent
// writers in other processes are not supported.
//
// Boolean results carry the registry outcome. A non-nil error always means
// the backing store failed.
type Service struct {
    repo    Repository
    logger  *slog.Logger
    metrics *metrics.Metrics

    mu sync.Mutex
}

// NewService creates a registry over repo. m may be nil.
func NewService(repo Repository, logger *slog.Logger, m *metrics.Metrics) *Service {
    return &Service{repo: repo, logger: logger.With(slog.String("component", "registry")), metrics: m}
}

// Register stores a new identity. It returns false when uid already exists.
func (s *Service) Register(ctx context.Context, uid, seedPhrase string, wallets []wallet.Wallet) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "register")
    if err != nil {
        return false, err
    }
    if _, exists := records[uid]; exists {
        s.logger.Info("registry.register rejected", slog.String("uid", uid), slog.String("reason", "uid exists"))
        s.metrics.RegistryOp("register", false)
        return false, nil
    }

    records[uid] = Record{
        SeedPhraseHash:   Fingerprint(seedPhrase),
        ConnectedWallets: wallet.CloneList(wallets),
    }
    if err := s.save(ctx, "register", records); err != nil {
        return false, err
    }

    s.logger.Info("registry.register completed", slog.String("uid", uid), slog.Int("wallets", len(wallets)))
    s.metrics.RegistryOp("register", true)
    return true, nil
}

// Verify reports whether seedPhrase matches the fingerprint stored for uid.
func (s *Service) Verify(ctx context.Context, uid, seedPhrase string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "verify")
    if err != nil {
        return false, err
    }
    rec, ok := records[uid]
    if !ok {
        s.metrics.RegistryOp("verify", false)
        return false, nil
    }
    match := rec.SeedPhraseHash == Fingerprint(seedPhrase)
    s.logger.Info("registry.verify completed", slog.String("uid", uid), slog.Bool("match", match))
    s.metrics.RegistryOp("verify", match)
    return match, nil
}

// Exists reports whether uid is registered.
func (s *Service) Exists(ctx context.Context, uid string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "exists")
    if err != nil {
        return false, err
    }
    _, ok := records[uid]
    s.metrics.RegistryOp("exists", ok)
    return ok, nil
}

// ConnectedWallets returns a copy of the wallets stored for uid, or nil when
// uid is unknown or has none.
func (s *Service) ConnectedWallets(ctx context.Context, uid string) ([]wallet.Wallet, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "connected_wallets")
    if err != nil {
        return nil, err
    }
    rec, ok := records[uid]
    if !ok || len(rec.ConnectedWallets) == 0 {
        s.metrics.RegistryOp("connected_wallets", false)
        return nil, nil
    }
    s.metrics.RegistryOp("connected_wallets", true)
    return wallet.CloneList(rec.ConnectedWallets), nil
}

// UpdateConnectedWallets replaces the wallet list of uid. The fingerprint is
// left untouched. It returns false when uid is unknown.
func (s *Service) UpdateConnectedWallets(ctx context.Context, uid string, wallets []wallet.Wallet) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "update_wallets")
    if err != nil {
        return false, err
    }
    rec, ok := records[uid]
    if !ok {
        s.logger.Warn("registry.update_wallets unknown uid", slog.String("uid", uid))
        s.metrics.RegistryOp("update_wallets", false)
        return false, nil
    }
    rec.ConnectedWallets = wallet.CloneList(wallets)
    records[uid] = rec
    if err := s.save(ctx, "update_wallets", records); err != nil {
        return false, err
    }

    s.logger.Info("registry.update_wallets completed", append([]any{slog.String("uid", uid)}, walletAttrs(wallets)...)...)
    s.metrics.RegistryOp("update_wallets", true)
    return true, nil
}

// RewriteConnectedWallets re-encodes the stored wallet list of uid. It
// returns false when uid is unknown or has no wallets.
func (s *Service) RewriteConnectedWallets(ctx context.Context, uid string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "rewrite_wallets")
    if err != nil {
        return false, err
    }
    rec, ok := records[uid]
    if !ok || len(rec.ConnectedWallets) == 0 {
        s.metrics.RegistryOp("rewrite_wallets", false)
        return false, nil
    }
    if err := s.save(ctx, "rewrite_wallets", records); err != nil {
        return false, err
    }
    s.metrics.RegistryOp("rewrite_wallets", true)
    return true, nil
}

// ListAll returns every registered UID in sorted order.
func (s *Service) ListAll(ctx context.Context) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "list_all")
    if err != nil {
        return nil, err
    }
    uids := make([]string, 0, len(records))
    for uid := range records {
        uids = append(uids, uid)
    }
    sort.Strings(uids)
    return uids, nil
}

// ClearAll deletes every identity.
func (s *Service) ClearAll(ctx context.Context) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    if err := s.repo.Clear(ctx); err != nil {
        s.logger.Error("registry.clear_all failed", slog.Any("error", err))
        s.metrics.RegistryError("clear_all")
        return false, err
    }
    s.logger.Warn("registry.clear_all completed")
    s.metrics.RegistryOp("clear_all", true)
    return true, nil
}

// DumpAll returns a copy of the whole mapping.
func (s *Service) DumpAll(ctx context.Context) (map[string]Record, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    records, err := s.load(ctx, "dump_all")
    if err != nil {
        return nil, err
    }
    return cloneRecords(records), nil
}

func (s *Service) load(ctx context.Context, op string) (map[string]Record, error) {
    records, err := s.repo.Load(ctx)
    if err != nil {
        s.logger.Error("registry load failed", slog.String("op", op), slog.Any("error", err))
        s.metrics.RegistryError(op)
        return nil, err
    }
    return records, nil
}

func (s *Service) save(ctx context.Context, op string, records map[string]Record) error {
    if err := s.repo.Save(ctx, records); err != nil {
        s.logger.Error("registry save failed", slog.String("op", op), slog.Any("error", err))
        s.metrics.RegistryError(op)
        return err
    }
    return nil
}

func walletAttrs(wallets []wallet.Wallet) []any {
    ids := make([]string, 0, len(wallets))
    withSeed, withKey := 0, 0
    for _, w := range wallets {
        ids = append(ids, w.ID)
        if w.SeedPhrase != "" {
            withSeed++
        }
        if w.PrivateKey != "" {
            withKey++
        }
    }
    return []any{
        slog.Any("wallet_ids", ids),
        slog.Int("with_seed_phrase", withSeed),
        slog.Int("with_private_key", withKey),
    }
}
