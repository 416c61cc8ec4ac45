// Package mnemonic produces 12-word BIP-39 seed phrases.
package mnemonic

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// WordCount is the number of words in every generated phrase.
const WordCount = 12

const entropyBits = 128

// ErrGenerationFailed is returned when neither attempt yields a 12-word phrase.
var ErrGenerationFailed = errors.New("mnemonic: failed to generate a valid seed phrase")

// FallbackWords is drawn from when the BIP-39 encoder is unavailable.
var FallbackWords = []string{
	"abandon", "ability", "access", "account", "achieve", "across", "action", "address", "advance", "advice",
	"air", "animal", "apple", "autumn", "beach", "bird", "branch", "bridge", "butterfly", "cactus",
	"build", "catch", "change", "choose", "collect", "connect", "create", "dance", "decide", "discover",
	"brave", "bright", "calm", "careful", "clever", "curious", "eager", "early", "easy", "empty",
	"digital", "dream", "energy", "engine", "escape", "exchange", "family", "famous", "garden", "history",
}

// Encoder turns entropy into a mnemonic sentence.
type Encoder func(entropy []byte) (string, error)

// Generator produces seed phrases. The zero value is not usable; use New.
type Generator struct {
	encode Encoder
	random io.Reader
}

// Option customises a Generator.
type Option func(*Generator)

// WithEncoder replaces the BIP-39 encoder.
func WithEncoder(enc Encoder) Option {
	return func(g *Generator) { g.encode = enc }
}

// WithRandom replaces the entropy source.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) { g.random = r }
}

// New returns a generator backed by the BIP-39 English wordlist and crypto/rand.
func New(opts ...Option) *Generator {
	g := &Generator{encode: bip39.NewMnemonic, random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a 12-word phrase. When entropy or encoding fails it falls
// back to 12 distinct words from FallbackWords.
func (g *Generator) Generate() (string, error) {
	entropy := make([]byte, entropyBits/8)
	if _, err := io.ReadFull(g.random, entropy); err == nil {
		if phrase, err := g.encode(entropy); err == nil {
			return phrase, nil
		}
	}
	return g.fallback()
}

// GenerateChecked generates a phrase and checks it has WordCount words,
// regenerating once before giving up with ErrGenerationFailed.
func (g *Generator) GenerateChecked() (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		phrase, err := g.Generate()
		if err != nil {
			lastErr = err
			continue
		}
		if len(Words(phrase)) == WordCount {
			return phrase, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}
	return "", ErrGenerationFailed
}

func (g *Generator) fallback() (string, error) {
	if len(FallbackWords) < WordCount {
		return "", fmt.Errorf("fallback wordlist too small")
	}
	max := big.NewInt(int64(len(FallbackWords)))
	seen := make(map[int]struct{}, WordCount)
	words := make([]string, 0, WordCount)
	for len(words) < WordCount {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("fallback random index: %w", err)
		}
		idx := int(n.Int64())
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		words = append(words, FallbackWords[idx])
	}
	return strings.Join(words, " "), nil
}

// Validate reports whether phrase is a checksummed BIP-39 mnemonic.
func Validate(phrase string) bool {
	return bip39.IsMnemonicValid(phrase)
}

// Words splits phrase on whitespace.
func Words(phrase string) []string {
	return strings.Fields(phrase)
}
