// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Sabacan365 API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ArticleHandler: Article list and detail
  - AttemptHandler: Quiz attempt start and completion
  - FavoriteHandler: Favorite words and CSV/XLSX export
  - EventHandler: Client-reported learning events
  - AccountHandler: Activity dashboard
  - AuthHandler: OAuth login, logout and current user
  - AdminHandler: Content import

Handlers are created via constructor functions that accept *sqlx.DB and Config:

	articleHandler := handlers.NewArticleHandler(db, cfg)

NewAuthHandler also takes an auth.IdentityProvider, nil when login is off.

# Articles

	GET /articles         → ListArticles (filters, search, completion)
	GET /articles/{slug}  → GetArticle (quiz, latest vocabulary, favorites)

GetArticle loads the article, quiz and vocabulary concurrently.

# Quiz Attempts

	POST /quiz-attempts/start    → StartAttempt (reuses an open attempt)
	POST /quiz-attempts/complete → CompleteAttempt (grades on the server)

Completion closes the user's open attempt for the slug, or records a new
one, and appends a quiz_complete learning event in the same transaction.
Study time runs from the latest video_start event, capped at 45 minutes.

# Favorites

	GET    /favorites             → ListFavorites
	PUT    /favorites             → PutFavorite (upsert + favorite_add event)
	DELETE /favorites/{word}      → DeleteFavorite
	GET    /favorites/export.csv  → ExportCSV
	GET    /favorites/export.xlsx → ExportXLSX

# Authentication

	GET  /auth/login    → Login (redirects to the provider)
	GET  /auth/callback → Callback (sets the session cookie)
	POST /auth/logout   → Logout
	GET  /auth/me       → Me

Login failures redirect to /login?error=<code>.

# Admin

	POST /admin/import                     → ImportContent (YAML)
	POST /admin/articles/{slug}/vocabulary → ImportVocabulary (XLSX)

Admin operations require the X-Admin-Key header.
*/
package handlers
