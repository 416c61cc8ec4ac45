package registry

import "github.com/ucid-labs/ucid/internal/wallet"

// Record is the stored state of one identity, keyed by UID.
type Record struct {
    SeedPhraseHash   string          `json:"seedPhraseHash"`
    ConnectedWallets []wallet.Wallet `json:"connectedWallets,omitempty"`
}

func (r Record) clone() Record {
    return Record{SeedPhraseHash: r.SeedPhraseHash, ConnectedWallets: wallet.CloneList(r.ConnectedWallets)}
}

func cloneRecords(in map[string]Record) map[string]Record {
    out := make(map[string]Record, len(in))
    for uid, rec := range in {
        out[uid] = rec.clone()
    }
    return out
}
