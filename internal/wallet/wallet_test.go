package wallet

import (
    "context"
    "testing"
)

func TestPatchApply(t *testing.T) {
    seed := "one two three four five six seven eight nine ten eleven twelve"
    w := Wallet{ID: "metamask", Name: "MetaMask", Icon: "🦊"}

    updated := Patch{SeedPhrase: &seed}.Apply(w)
    if updated.SeedPhrase != seed {
        t.Fatalf("expected seed phrase applied")
    }
    if updated.Name != "MetaMask" || updated.PrivateKey != "" {
        t.Fatalf("unexpected fields changed: %+v", updated)
    }
    if w.SeedPhrase != "" {
        t.Fatalf("original wallet mutated")
    }
    if !(Patch{}).Empty() {
        t.Fatalf("expected empty patch")
    }
}

func TestCloneListIsolation(t *testing.T) {
    src := []Wallet{{ID: "a"}, {ID: "b"}}
    dup := CloneList(src)
    dup[0].Name = "changed"
    if src[0].Name != "" {
        t.Fatalf("clone shares backing array")
    }
    if CloneList(nil) != nil || CloneList([]Wallet{}) != nil {
        t.Fatalf("expected nil for empty input")
    }
}

func TestCatalog(t *testing.T) {
    providers := Providers()
    if len(providers) != 4 {
        t.Fatalf("expected 4 providers, got %d", len(providers))
    }
    p, ok := LookupProvider("phantom")
    if !ok || p.Icon != "👻" || p.AppScheme != "phantom://" {
        t.Fatalf("unexpected phantom entry %+v", p)
    }
    if w := p.Wallet(); w.ID != "phantom" || w.Address != "" {
        t.Fatalf("unexpected wallet %+v", w)
    }
    if _, ok := LookupProvider("ledger"); ok {
        t.Fatalf("unexpected provider")
    }
}

func TestStaticDetector(t *testing.T) {
    ctx := context.Background()
    d := NewStaticDetector("metamask", "unknown", "")
    if !d.IsInstalled(ctx, "metamask") {
        t.Fatalf("expected metamask installed")
    }
    if d.IsInstalled(ctx, "okx") {
        t.Fatalf("did not expect okx installed")
    }
    if d.Activate(ctx, "unknown") {
        t.Fatalf("activation must require a catalog provider")
    }
    if got := d.Installed(); len(got) != 2 {
        t.Fatalf("unexpected installed list %v", got)
    }
}
