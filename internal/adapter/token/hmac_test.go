package token_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neomorfeo/siteclone/internal/adapter/token"
	"github.com/neomorfeo/siteclone/internal/domain"
)

func TestSigner_IssueAndVerify(t *testing.T) {
	s := token.NewSigner("secret", time.Hour)

	tok := s.Issue()
	if err := s.Verify(context.Background(), tok); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tok == s.Issue() {
		t.Error("tokens should be unique")
	}
}

func TestSigner_RejectsForgedTokens(t *testing.T) {
	s := token.NewSigner("secret", time.Hour)
	other := token.NewSigner("other-secret", time.Hour)
	valid := s.Issue()

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"other secret":   other.Issue(),
		"tampered sig":   valid[:len(valid)-1] + "0",
		"tampered claim": "9" + valid,
		"no signature":   valid[:strings.LastIndexByte(valid, '.')],
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if err := s.Verify(context.Background(), tok); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSigner_RejectsExpiredTokens(t *testing.T) {
	s := token.NewSigner("secret", time.Minute)
	issued := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return issued })
	tok := s.Issue()

	s.SetClock(func() time.Time { return issued.Add(30 * time.Second) })
	if err := s.Verify(context.Background(), tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	s.SetClock(func() time.Time { return issued.Add(2 * time.Minute) })
	if err := s.Verify(context.Background(), tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
