// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

const (
	defaultLoginNext    = "/account"
	defaultCallbackNext = "/"
	loginPath           = "/login"
)

// AuthHandler runs the OAuth login round trip. provider is nil when
// login is not configured.
type AuthHandler struct {
	db       *sqlx.DB
	cfg      cliparse.Config
	provider auth.IdentityProvider
}

func NewAuthHandler(db *sqlx.DB, cfg cliparse.Config, provider auth.IdentityProvider) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, provider: provider}
}

func (h *AuthHandler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.BaseURL, "https://")
}

func loginError(code string) string {
	return loginPath + "?error=" + url.QueryEscape(code)
}

// Login handles GET /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Login is not configured")
		return
	}

	next := auth.SafeNextPath(r.URL.Query().Get("next"), defaultLoginNext)
	state := auth.SignState(next, h.cfg.SessionSecret)

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")

	next := auth.SafeNextPath(q.Get("next"), defaultCallbackNext)
	if state := q.Get("state"); state != "" {
		fromState, err := auth.VerifyState(state, h.cfg.SessionSecret)
		if err != nil {
			slog.Warn("rejecting oauth callback", "error", err)
			http.Redirect(w, r, loginError("invalid_state"), http.StatusFound)
			return
		}
		next = auth.SafeNextPath(fromState, next)
	}

	if code == "" {
		// Already signed in: just continue
		if _, ok := middleware.UserID(r.Context()); ok {
			http.Redirect(w, r, next, http.StatusFound)
			return
		}
		http.Redirect(w, r, loginError("missing_code"), http.StatusFound)
		return
	}

	if h.provider == nil {
		http.Redirect(w, r, loginError("login_disabled"), http.StatusFound)
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err)
		http.Redirect(w, r, loginError("exchange_failed"), http.StatusFound)
		return
	}

	userID, err := upsertUser(r.Context(), h.db, identity, time.Now().UTC())
	if err != nil {
		slog.Error("failed to upsert user", "error", err)
		http.Redirect(w, r, loginError("exchange_failed"), http.StatusFound)
		return
	}

	token := auth.IssueSessionToken(userID, h.cfg.SessionSecret, auth.SessionTTL, time.Now())
	middleware.SetSessionCookie(w, token, h.secureCookies())

	slog.Info("user signed in", "user_id", userID, "provider", identity.Provider)

	http.Redirect(w, r, next, http.StatusFound)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.secureCookies())
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var user models.User
	err := h.db.GetContext(r.Context(), &user, h.db.Rebind(`
		SELECT id, provider, subject, email, display_name, created_at, last_login_at
		FROM users WHERE id = ?
	`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		// The session outlived its user
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// upsertUser records a login for identity and returns the local user ID
func upsertUser(ctx context.Context, db *sqlx.DB, identity auth.Identity, now time.Time) (string, error) {
	nullable := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO users (id, provider, subject, email, display_name, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, subject) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			last_login_at = excluded.last_login_at
	`), auth.GenerateID(), identity.Provider, identity.Subject,
		nullable(identity.Email), nullable(identity.DisplayName), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	var userID string
	err = db.GetContext(ctx, &userID, db.Rebind(`
		SELECT id FROM users WHERE provider = ? AND subject = ?
	`), identity.Provider, identity.Subject)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return userID, nil
}
