// Package token issues and verifies the anti-forgery tokens that must
// accompany a duplication submission.
package token

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: Signer implements domain.TokenVerifier.
var _ domain.TokenVerifier = (*Signer)(nil)

// Signer issues tokens of the form <expiry>.<nonce>.<hmac-sha256>.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. Tokens expire ttl after issue.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a fresh token.
func (s *Signer) Issue() string {
	payload := strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10) + "." + uuid.NewString()
	return payload + "." + s.sign(payload)
}

// Verify returns domain.ErrInvalidToken unless token was issued by this
// signer and has not expired.
func (s *Signer) Verify(_ context.Context, token string) error {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 {
		return domain.ErrInvalidToken
	}
	payload, sig := token[:i], token[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return domain.ErrInvalidToken
	}

	expiry, _, ok := strings.Cut(payload, ".")
	if !ok {
		return domain.ErrInvalidToken
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if s.now().After(time.Unix(unix, 0)) {
		return fmt.Errorf("token expired: %w", domain.ErrInvalidToken)
	}
	return nil
}

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
