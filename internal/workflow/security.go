package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordBytes  = 72
	passwordSpecials  = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordNotSet     = errors.New("no password configured")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCurrent     = errors.New("invalid current password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrNoSeedPhraseStored = errors.New("no seed phrase stored")
)

// WeakPasswordError lists the strength rules a password failed.
type WeakPasswordError struct {
	Issues []string
}

func (e *WeakPasswordError) Error() string {
	return "password must " + strings.Join(e.Issues, ", ")
}

// CheckPasswordStrength returns nil or a *WeakPasswordError.
func CheckPasswordStrength(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	var issues []string
	if len([]rune(password)) < minPasswordLength {
		issues = append(issues, fmt.Sprintf("be at least %d characters long", minPasswordLength))
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper {
		issues = append(issues, "contain at least one uppercase letter")
	}
	if !digit {
		issues = append(issues, "contain at least one number")
	}
	if !special {
		issues = append(issues, "contain at least one special character")
	}
	if len(issues) > 0 {
		return &WeakPasswordError{Issues: issues}
	}
	return nil
}

// SeedSource exposes the active identity's seed phrase.
type SeedSource interface {
	SeedPhrase() string
}

// Security holds the dashboard password and guards seed phrase reveal.
// The password lives only in memory.
type Security struct {
	codes  *RevealCodes
	seeds  SeedSource
	logger *slog.Logger

	mu   sync.RWMutex
	hash []byte
}

// NewSecurity builds security settings backed by the stored reveal code.
func NewSecurity(codes *RevealCodes, seeds SeedSource, logger *slog.Logger) *Security {
	return &Security{codes: codes, seeds: seeds, logger: logger.With(slog.String("component", "security"))}
}

// HasPassword reports whether a password is configured.
func (s *Security) HasPassword() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hash) > 0
}

// SetPassword configures the first password.
func (s *Security) SetPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if err := CheckPasswordStrength(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.hash = hash
	s.mu.Unlock()
	s.logger.Info("security.password set")
	return nil
}

// ChangePassword replaces the password once current matches.
func (s *Security) ChangePassword(current, password, confirm string) error {
	if !s.VerifyPassword(current) {
		return ErrInvalidCurrent
	}
	return s.SetPassword(password, confirm)
}

// DisablePassword removes the password.
func (s *Security) DisablePassword() {
	s.mu.Lock()
	s.hash = nil
	s.mu.Unlock()
	s.logger.Info("security.password disabled")
}

// VerifyPassword reports whether password equals the configured one.
func (s *Security) VerifyPassword(password string) bool {
	s.mu.RLock()
	hash := s.hash
	s.mu.RUnlock()
	if len(hash) == 0 || len(password) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// RevealSeed returns the identity seed phrase after both the password and
// the reveal code match.
func (s *Security) RevealSeed(ctx context.Context, password, code string) (string, error) {
	if !s.HasPassword() {
		return "", ErrPasswordNotSet
	}
	if !s.VerifyPassword(password) {
		s.logger.Warn("security.reveal_seed rejected", slog.String("reason", "password"))
		return "", ErrInvalidPassword
	}
	ok, err := s.codes.Check(ctx, code)
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Warn("security.reveal_seed rejected", slog.String("reason", "reveal code"))
		return "", ErrRevealCodeMismatch
	}
	seed := s.seeds.SeedPhrase()
	if seed == "" {
		return "", ErrNoSeedPhraseStored
	}
	return seed, nil
}
