package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewTokenManager("a-test-secret-that-is-long-enough", time.Hour, "locallibrary")

	token, err := m.Generate(17)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Validate(token.Plaintext)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 17 {
		t.Fatalf("UserID = %d, %v", id, err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, "locallibrary")
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Validate(token.Plaintext); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Validate error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	ours := NewTokenManager("secret", time.Hour, "locallibrary")
	theirs := NewTokenManager("other-secret", time.Hour, "locallibrary")
	otherIssuer := NewTokenManager("secret", time.Hour, "someone-else")

	for name, m := range map[string]*TokenManager{"wrong secret": theirs, "wrong issuer": otherIssuer} {
		token, err := m.Generate(1)
		if err != nil {
			t.Fatalf("%s: Generate: %v", name, err)
		}
		if _, err := ours.Validate(token.Plaintext); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: Validate error = %v, want ErrInvalidToken", name, err)
		}
	}

	if _, err := ours.Validate("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v", err)
	}
}
