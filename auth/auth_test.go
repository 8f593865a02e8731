// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	_, err := uuid.Parse(id1)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2, "GenerateID() produced duplicate IDs (extremely unlikely)")
}

func TestValidateAdminKey(t *testing.T) {
	tests := []struct {
		name     string
		provided string
		expected string
		wantErr  bool
	}{
		{"match", "secret", "secret", false},
		{"mismatch", "nope", "secret", true},
		{"empty provided", "", "secret", true},
		{"empty configured", "secret", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.provided, tt.expected)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAdminKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := IssueSessionToken("user-123", "secret", time.Hour, now)

	userID, err := ParseSessionToken(token, "secret", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestSessionToken_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := IssueSessionToken("user-123", "secret", time.Hour, now)

	encoded, sig, _ := strings.Cut(token, ".")
	forged := IssueSessionToken("someone-else", "other-secret", time.Hour, now)
	forgedPayload, _, _ := strings.Cut(forged, ".")

	tests := []struct {
		name    string
		token   string
		secret  string
		at      time.Time
		wantErr error
	}{
		{"expired", token, "secret", now.Add(2 * time.Hour), ErrSessionExpired},
		{"expires exactly at ttl", token, "secret", now.Add(time.Hour), ErrSessionExpired},
		{"wrong secret", token, "other", now, ErrInvalidSession},
		{"swapped payload", forgedPayload + "." + sig, "secret", now, ErrInvalidSession},
		{"no separator", encoded, "secret", now, ErrInvalidSession},
		{"empty", "", "secret", now, ErrInvalidSession},
		{"garbage", "abc.def", "secret", now, ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionToken(tt.token, tt.secret, tt.at)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestState_RoundTrip(t *testing.T) {
	state := SignState("/account?tab=favorites", "secret")

	next, err := VerifyState(state, "secret")
	require.NoError(t, err)
	assert.Equal(t, "/account?tab=favorites", next)

	// Each state carries a fresh nonce
	assert.NotEqual(t, state, SignState("/account?tab=favorites", "secret"))

	_, err = VerifyState(state, "wrong")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = VerifyState("not-a-state", "secret")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSafeNextPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/account", "/account"},
		{"/articles/abc?x=1", "/articles/abc?x=1"},
		{"", "/"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"account", "/"},
		{"/a\r\nSet-Cookie: x", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNextPath(tt.next, "/"))
		})
	}
}

func TestGoogleProvider_Exchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"g-42","email":"learner@example.com","name":"Learner"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider("client", "secret", "http://localhost:3318")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.userInfoURL = srv.URL + "/userinfo"

	ident, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		Provider:    "google",
		Subject:     "g-42",
		Email:       "learner@example.com",
		DisplayName: "Learner",
	}, ident)

	authURL := p.AuthCodeURL("state-xyz")
	assert.Contains(t, authURL, srv.URL+"/auth")
	assert.Contains(t, authURL, "state=state-xyz")
	assert.Contains(t, authURL, "redirect_uri=http%3A%2F%2Flocalhost%3A3318%2Fauth%2Fcallback")
}

func TestGoogleProvider_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider("client", "secret", "http://localhost:3318")
	p.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	p.userInfoURL = srv.URL + "/userinfo"

	_, err := p.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}
