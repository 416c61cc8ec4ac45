package uid

import "testing"

func TestNewShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		u := New()
		if len(u) != Length {
			t.Fatalf("expected length %d, got %d (%s)", Length, len(u), u)
		}
		for _, r := range u {
			if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
				t.Fatalf("unexpected character %q in %s", r, u)
			}
		}
		if seen[u] {
			t.Fatalf("duplicate uid %s", u)
		}
		seen[u] = true
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"ABCDEF0123456789":  true,
		"abcdef0123456789":  false,
		"ABC123":            false,
		"ABCDEF0123456789X": false,
		"custom-1700000000": false,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}
