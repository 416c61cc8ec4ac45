package mnemonic

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateProducesValidBIP39(t *testing.T) {
	g := New()
	for i := 0; i < 20; i++ {
		phrase, err := g.GenerateChecked()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if n := len(strings.Split(phrase, " ")); n != WordCount {
			t.Fatalf("expected %d words, got %d: %q", WordCount, n, phrase)
		}
		if !Validate(phrase) {
			t.Fatalf("expected valid mnemonic: %q", phrase)
		}
	}
}

func TestGenerateFallsBackToDistinctWords(t *testing.T) {
	g := New(WithEncoder(func([]byte) (string, error) {
		return "", errors.New("encoder unavailable")
	}))

	allowed := make(map[string]bool, len(FallbackWords))
	for _, w := range FallbackWords {
		allowed[w] = true
	}

	for i := 0; i < 50; i++ {
		phrase, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		words := Words(phrase)
		if len(words) != WordCount {
			t.Fatalf("expected %d words, got %d", WordCount, len(words))
		}
		seen := map[string]bool{}
		for _, w := range words {
			if !allowed[w] {
				t.Fatalf("word %q not in fallback list", w)
			}
			if seen[w] {
				t.Fatalf("duplicate word %q in %q", w, phrase)
			}
			seen[w] = true
		}
	}
}

func TestGenerateCheckedRetriesOnce(t *testing.T) {
	calls := 0
	g := New(WithEncoder(func(entropy []byte) (string, error) {
		calls++
		if calls == 1 {
			return "too short", nil
		}
		return "one two three four five six seven eight nine ten eleven twelve", nil
	}))

	phrase, err := g.GenerateChecked()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 encoder calls, got %d", calls)
	}
	if len(Words(phrase)) != WordCount {
		t.Fatalf("unexpected phrase %q", phrase)
	}
}

func TestGenerateCheckedFailsAfterRetry(t *testing.T) {
	calls := 0
	g := New(WithEncoder(func([]byte) (string, error) {
		calls++
		return "eleven words only a b c d e f g h", nil
	}))

	if _, err := g.GenerateChecked(); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestValidateRejectsFallbackStylePhrase(t *testing.T) {
	if Validate("abandon ability access") {
		t.Fatalf("expected short phrase to be invalid")
	}
}
