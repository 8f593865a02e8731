// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Sabacan365 API.

# Route Registration

NewRouter creates the handler tree with all endpoints:

	handler := router.NewRouter(db, cfg)

The ServeMux is wrapped in WithSession (resolves the signed-in user) and
CORS. Every route except /health and / is wrapped in WithLogging.

# Endpoints

Health:

	GET /health - Pings the database

Content (public):

	GET /articles        - Filtered article list
	GET /articles/{slug} - Article with quiz and vocabulary

Quiz attempts (signed in, 401 otherwise):

	POST /quiz-attempts/start
	POST /quiz-attempts/complete

Favorites, events and account (RequireUser):

	GET    /favorites
	PUT    /favorites
	DELETE /favorites/{word}
	GET    /favorites/export.csv
	GET    /favorites/export.xlsx
	POST   /learning-events
	GET    /account

Authentication:

	GET  /auth/login
	GET  /auth/callback
	POST /auth/logout
	GET  /auth/me (RequireUser)

Content management (requires X-Admin-Key):

	POST /admin/import
	POST /admin/articles/{slug}/vocabulary

Google login is enabled only when both OAuth client settings are present.
*/
package router
