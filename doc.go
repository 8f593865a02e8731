// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Sabacan365 API server.

Sabacan365 is an English-learning service built around short news and
science videos. Each article pairs a video with a lead intro, a
multiple-choice quiz and a vocabulary list. Signed-in learners record quiz
attempts, save favorite words and get an activity dashboard with streaks.

# Starting the Server

With SQLite (the default database type):

	DATABASE_URL=./sabacan365.db SESSION_SECRET=... ADMIN_KEY=... go run .

With PostgreSQL:

	go run . -t postgres -d "postgres://..." --session-secret ... --admin-key ...

A .env file in the working directory is loaded before flags are read.

# Importing Content

The same binary imports content and exits without starting the server:

	go run . -import content.yaml
	go run . -import vocab.xlsx -slug black-holes

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): Secret for session and OAuth state signing
  - ADMIN_KEY (--admin-key): Key for the admin import endpoints

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (--base-url): Public URL used for OAuth redirects
  - APP_TIMEZONE (--tz): Timezone for learning-day boundaries (default: UTC)
  - OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET: Enable Google login
  - ATTEMPT_TTL (--attempt-ttl): Age after which open attempts are swept

# Architecture

  - handlers: HTTP request handlers (articles, attempts, favorites, events, account, auth, admin)
  - home: Article list filtering and completion status
  - analytics: Dashboard aggregation (overview, streaks, series, calendar)
  - importer: YAML and XLSX content import
  - scheduler: Background sweep of abandoned quiz attempts
  - router: Route definitions using Go 1.22+ routing
  - middleware: Sessions, CORS, logging, JSON helpers
  - models: Row, request and response types
  - auth: Session tokens, OAuth state and identity providers
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
