package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ucid-labs/ucid/internal/kvstore"
)

// RevealCodeSuffix names the stored reveal code inside the namespace.
const RevealCodeSuffix = "revealCode"

var (
	ErrRevealCodeFormat   = errors.New("reveal code must be exactly 6 digits")
	ErrRevealCodeRepeat   = errors.New("reveal code digits must all be different")
	ErrRevealCodeSequence = errors.New("reveal code must not contain consecutive digits")
	ErrRevealCodeMismatch = errors.New("invalid 6-digit code, please try again")
)

// ValidateRevealCode checks a code is six distinct digits with no adjacent
// pair differing by exactly one.
func ValidateRevealCode(code string) error {
	if len(code) != 6 {
		return ErrRevealCodeFormat
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrRevealCodeFormat
		}
	}

	var seen [10]bool
	for i := 0; i < len(code); i++ {
		d := code[i] - '0'
		if seen[d] {
			return ErrRevealCodeRepeat
		}
		seen[d] = true
	}

	for i := 1; i < len(code); i++ {
		diff := int(code[i]) - int(code[i-1])
		if diff == 1 || diff == -1 {
			return ErrRevealCodeSequence
		}
	}
	return nil
}

// RevealCodes persists the reveal code independently of the password.
type RevealCodes struct {
	kv  kvstore.Store
	key string
}

// NewRevealCodes stores the code under "<namespace>_revealCode".
func NewRevealCodes(kv kvstore.Store, namespace string) *RevealCodes {
	return &RevealCodes{kv: kv, key: kvstore.Key(namespace, RevealCodeSuffix)}
}

// Save validates and stores code.
func (r *RevealCodes) Save(ctx context.Context, code string) error {
	if err := ValidateRevealCode(code); err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, code); err != nil {
		return fmt.Errorf("store reveal code: %w", err)
	}
	return nil
}

// Check reports whether code equals the stored reveal code.
func (r *RevealCodes) Check(ctx context.Context, code string) (bool, error) {
	stored, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return false, fmt.Errorf("load reveal code: %w", err)
	}
	return ok && stored != "" && stored == code, nil
}
