// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens, OAuth helpers and ID generation.

# Session Tokens

Sessions are stateless HMAC-signed tokens carrying the user ID and expiry:

	token := auth.IssueSessionToken(userID, secret, auth.SessionTTL, time.Now())
	userID, err := auth.ParseSessionToken(token, secret, time.Now())

ParseSessionToken returns ErrInvalidSession for a bad signature or payload
and ErrSessionExpired once the expiry has passed. The token travels in the
SessionCookie cookie or an Authorization: Bearer header.

# OAuth State

The post-login path is carried through the provider round trip in a signed
state value:

	state := auth.SignState("/account", secret)
	next, err := auth.VerifyState(state, secret)

SafeNextPath rejects anything that is not a same-origin absolute path.

# Identity Providers

IdentityProvider hides the OAuth2 code exchange. GoogleProvider implements
it with golang.org/x/oauth2 and the OpenID Connect userinfo endpoint.

# Admin Keys

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

An empty configured key disables admin access entirely.

# ID Generation

	id := auth.GenerateID() // random UUID
*/
package auth
