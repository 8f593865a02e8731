// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/danielhkuo/sabacan365/models"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var ErrMissingSubject = errors.New("identity provider returned no subject")

// Identity is the user as reported by the external provider
type Identity struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// IdentityProvider hides the OAuth exchange behind two calls
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

// GoogleProvider signs users in with Google OpenID Connect
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider builds a provider whose callback is baseURL + "/auth/callback"
func NewGoogleProvider(clientID, clientSecret, baseURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  baseURL + "/auth/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return Identity{}, ErrMissingSubject
	}

	return Identity{
		Provider:    models.ProviderGoogle,
		Subject:     info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}
