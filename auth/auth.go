// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookie is the cookie carrying the signed session token
	SessionCookie = "sabacan_session"

	// SessionTTL is how long a login stays valid
	SessionTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidSession  = errors.New("invalid session token")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidState    = errors.New("invalid oauth state")
)

// GenerateID creates a random UUID string for row identifiers
func GenerateID() string {
	return uuid.NewString()
}

// ValidateAdminKey checks the provided key against the configured one
func ValidateAdminKey(provided, expected string) error {
	if provided == "" || expected == "" {
		return ErrInvalidAdminKey
	}
	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// sign returns the URL-safe HMAC of payload
func sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// IssueSessionToken creates a signed token for userID that expires after ttl.
// Format: base64url(userID|unixExpiry) "." base64url(hmac)
func IssueSessionToken(userID, secret string, ttl time.Duration, now time.Time) string {
	payload := userID + "|" + strconv.FormatInt(now.Add(ttl).Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + sign(encoded, secret)
}

// ParseSessionToken verifies the token signature and expiry and returns the user ID
func ParseSessionToken(token, secret string, now time.Time) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return "", ErrInvalidSession
	}
	if !hmac.Equal([]byte(sig), []byte(sign(encoded, secret))) {
		return "", ErrInvalidSession
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidSession
	}
	userID, expStr, ok := strings.Cut(string(raw), "|")
	if !ok || userID == "" {
		return "", ErrInvalidSession
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", ErrInvalidSession
	}
	if now.Unix() >= exp {
		return "", ErrSessionExpired
	}

	return userID, nil
}

// SignState packs the post-login path into a tamper-proof OAuth state value
func SignState(next, secret string) string {
	nonce := uuid.NewString()
	encoded := base64.RawURLEncoding.EncodeToString([]byte(nonce + "|" + next))
	return encoded + "." + sign(encoded, secret)
}

// VerifyState checks a state produced by SignState and returns the path it carries
func VerifyState(state, secret string) (string, error) {
	encoded, sig, ok := strings.Cut(state, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(sign(encoded, secret))) {
		return "", ErrInvalidState
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidState
	}
	_, next, ok := strings.Cut(string(raw), "|")
	if !ok {
		return "", ErrInvalidState
	}
	return next, nil
}

// SafeNextPath only allows same-origin absolute paths as redirect targets
func SafeNextPath(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	// "//host" and "/\host" are treated as hosts by browsers
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if strings.ContainsAny(next, "\r\n") {
		return fallback
	}
	return next
}
