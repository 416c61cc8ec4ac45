package wallet

import (
    "context"
    "sort"
    "sync"
)

// Provider describes a well-known wallet application.
type Provider struct {
    ID             string `json:"id"`
    Name           string `json:"name"`
    Icon           string `json:"icon"`
    AppScheme      string `json:"appScheme"`
    PlayStoreURL   string `json:"playStoreUrl"`
    ChromeStoreURL string `json:"chromeStoreUrl"`
    ExtensionID    string `json:"extensionId"`
}

// Wallet returns the catalog entry as a connectable wallet with no address.
func (p Provider) Wallet() Wallet {
    return Wallet{ID: p.ID, Name: p.Name, Icon: p.Icon}
}

var catalog = []Provider{
    {
        ID:             "metamask",
        Name:           "MetaMask",
        Icon:           "🦊",
        AppScheme:      "metamask://",
        PlayStoreURL:   "https://play.google.com/store/apps/details?id=io.metamask",
        ChromeStoreURL: "https://chrome.google.com/webstore/detail/metamask/nkbihfbeogaeaoehlefnkodbefgpgknn",
        ExtensionID:    "nkbihfbeogaeaoehlefnkodbefgpgknn",
    },
    {
        ID:             "phantom",
        Name:           "Phantom",
        Icon:           "👻",
        AppScheme:      "phantom://",
        PlayStoreURL:   "https://play.google.com/store/apps/details?id=app.phantom",
        ChromeStoreURL: "https://chrome.google.com/webstore/detail/phantom/bfnaelmomeimhlpmgjnjophhpkkoljpa",
        ExtensionID:    "bfnaelmomeimhlpmgjnjophhpkkoljpa",
    },
    {
        ID:             "trustwallet",
        Name:           "Trust Wallet",
        Icon:           "🔐",
        AppScheme:      "trust://",
        PlayStoreURL:   "https://play.google.com/store/apps/details?id=com.wallet.crypto.trustapp",
        ChromeStoreURL: "https://chrome.google.com/webstore/detail/trust-wallet/egjidjbpglichdcondbcbdnbeeppgdph",
        ExtensionID:    "egjidjbpglichdcondbcbdnbeeppgdph",
    },
    {
        ID:             "okx",
        Name:           "OKX Wallet",
        Icon:           "🔷",
        AppScheme:      "okx://",
        PlayStoreURL:   "https://play.google.com/store/apps/details?id=com.okinc.okex.gp",
        ChromeStoreURL: "https://chrome.google.com/webstore/detail/okx-wallet/mcohilncbfahbmgdjkbpemcciiolgcge",
        ExtensionID:    "mcohilncbfahbmgdjkbpemcciiolgcge",
    },
}

// Providers returns a copy of the provider catalog in display order.
func Providers() []Provider {
    out := make([]Provider, len(catalog))
    copy(out, catalog)
    return out
}

// LookupProvider finds a catalog entry by id.
func LookupProvider(id string) (Provider, bool) {
    for _, p := range catalog {
        if p.ID == id {
            return p, true
        }
    }
    return Provider{}, false
}

// Detector reports whether a provider is installed and tries to bring it up.
// Results are best effort and must never gate a workflow decision.
type Detector interface {
    IsInstalled(ctx context.Context, providerID string) bool
    Activate(ctx context.Context, providerID string) bool
}

// StaticDetector answers from a fixed set of installed provider ids.
type StaticDetector struct {
    mu        sync.RWMutex
    installed map[string]bool
}

// NewStaticDetector builds a detector that treats ids as installed.
func NewStaticDetector(ids ...string) *StaticDetector {
    d := &StaticDetector{installed: make(map[string]bool, len(ids))}
    for _, id := range ids {
        if id != "" {
            d.installed[id] = true
        }
    }
    return d
}

func (d *StaticDetector) IsInstalled(_ context.Context, providerID string) bool {
    d.mu.RLock()
    defer d.mu.RUnlock()
    return d.installed[providerID]
}

// Activate succeeds only for installed catalog providers.
func (d *StaticDetector) Activate(ctx context.Context, providerID string) bool {
    if _, ok := LookupProvider(providerID); !ok {
        return false
    }
    return d.IsInstalled(ctx, providerID)
}

// Installed lists installed ids in sorted order.
func (d *StaticDetector) Installed() []string {
    d.mu.RLock()
    defer d.mu.RUnlock()
    out := make([]string, 0, len(d.installed))
    for id := range d.installed {
        out = append(out, id)
    }
    sort.Strings(out)
    return out
}
