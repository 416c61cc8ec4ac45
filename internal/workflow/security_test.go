package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestCheckPasswordStrength(t *testing.T) {
	if err := CheckPasswordStrength("Abc1!x"); err != nil {
		t.Fatalf("expected strong password, got %v", err)
	}
	var weak *WeakPasswordError
	if err := CheckPasswordStrength("abc"); !errors.As(err, &weak) || len(weak.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %v", err)
	}
	if err := CheckPasswordStrength("Abcdef1"); !errors.As(err, &weak) || len(weak.Issues) != 1 {
		t.Fatalf("expected missing special char, got %v", err)
	}
}

func TestSecurityPasswordLifecycle(t *testing.T) {
	fx := newFixture(t)
	sec := fx.security

	if err := sec.SetPassword("Secret1!", "Secret2!"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := sec.SetPassword("Secret1!", "Secret1!"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if !sec.VerifyPassword("Secret1!") || sec.VerifyPassword("secret1!") {
		t.Fatalf("password check must be exact")
	}
	if err := sec.ChangePassword("wrong", "Newpass2@", "Newpass2@"); !errors.Is(err, ErrInvalidCurrent) {
		t.Fatalf("expected invalid current, got %v", err)
	}
	if err := sec.ChangePassword("Secret1!", "Newpass2@", "Newpass2@"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !sec.VerifyPassword("Newpass2@") {
		t.Fatalf("expected new password active")
	}
	sec.DisablePassword()
	if sec.HasPassword() || sec.VerifyPassword("Newpass2@") {
		t.Fatalf("expected password disabled")
	}
}

func TestRevealSeedRequiresPasswordAndCode(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.session.Enroll(ctx, "Alice", testSeed)
	fx.codes.Save(ctx, "135792")

	if _, err := fx.security.RevealSeed(ctx, "Secret1!", "135792"); !errors.Is(err, ErrPasswordNotSet) {
		t.Fatalf("expected password not set, got %v", err)
	}
	fx.security.SetPassword("Secret1!", "Secret1!")

	if _, err := fx.security.RevealSeed(ctx, "nope", "135792"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if _, err := fx.security.RevealSeed(ctx, "Secret1!", "135790"); !errors.Is(err, ErrRevealCodeMismatch) {
		t.Fatalf("expected code mismatch, got %v", err)
	}
	seed, err := fx.security.RevealSeed(ctx, "Secret1!", "135792")
	if err != nil || seed != testSeed {
		t.Fatalf("unexpected reveal %q err=%v", seed, err)
	}
}
