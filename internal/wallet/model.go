package wallet

// Wallet is an external wallet attached to an identity.
type Wallet struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    Icon       string `json:"icon"`
    Address    string `json:"address"`
    SeedPhrase string `json:"seedPhrase,omitempty"`
    PrivateKey string `json:"privateKey,omitempty"`
}

// HasDetails reports whether the wallet detail flow has been completed once.
func (w Wallet) HasDetails() bool {
    return w.SeedPhrase != ""
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
    Name       *string `json:"name,omitempty"`
    Icon       *string `json:"icon,omitempty"`
    Address    *string `json:"address,omitempty"`
    SeedPhrase *string `json:"seedPhrase,omitempty"`
    PrivateKey *string `json:"privateKey,omitempty"`
}

// Apply returns w with the non-nil patch fields merged in.
func (p Patch) Apply(w Wallet) Wallet {
    if p.Name != nil {
        w.Name = *p.Name
    }
    if p.Icon != nil {
        w.Icon = *p.Icon
    }
    if p.Address != nil {
        w.Address = *p.Address
    }
    if p.SeedPhrase != nil {
        w.SeedPhrase = *p.SeedPhrase
    }
    if p.PrivateKey != nil {
        w.PrivateKey = *p.PrivateKey
    }
    return w
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
    return p.Name == nil && p.Icon == nil && p.Address == nil && p.SeedPhrase == nil && p.PrivateKey == nil
}

// CloneList returns an independent copy of list, or nil when it is empty.
func CloneList(list []Wallet) []Wallet {
    if len(list) == 0 {
        return nil
    }
    out := make([]Wallet, len(list))
    copy(out, list)
    return out
}

// IndexOf returns the position of the wallet with id, or -1.
func IndexOf(list []Wallet, id string) int {
    for i, w := range list {
        if w.ID == id {
            return i
        }
    }
    return -1
}
