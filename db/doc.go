// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

	conn, err := db.Open(ctx, cfg)

Open supports modernc.org/sqlite ("sqlite") and lib/pq ("postgres") behind
sqlx. Queries are written with ? placeholders and passed through Rebind.
SQLite connections are capped at one open connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - articles: One row per video, keyed by slug
  - quizzes: Lead intro and questions as JSON, one per slug
  - vocab_lists: Vocabulary JSON; the newest list per slug wins
  - users: Identity from the OAuth provider
  - quiz_attempts: Started and completed quiz runs
  - favorite_words: Saved vocabulary snapshots, one per user and word
  - learning_events: Activity log for streaks and the calendar

User-owned tables use ON DELETE CASCADE.
*/
package db
