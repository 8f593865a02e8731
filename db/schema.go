// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/sabacan365/cliparse"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about
	sqlx.BindDriver(cliparse.DatabaseSQLite, sqlx.QUESTION)
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg cliparse.Config) (*sqlx.DB, error) {
	conn, err := sqlx.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.DatabaseType == cliparse.DatabaseSQLite {
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	// One statement per Exec so errors point at the failing table
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Articles (one per video)
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    video_id TEXT,
    assigned_category TEXT,
    assigned_level TEXT,
    published_date TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    thumbnail_url TEXT,
    channel_name TEXT,
    video_title TEXT,
    video_length TEXT
);

CREATE INDEX IF NOT EXISTS idx_articles_channel ON articles(channel_name);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(assigned_category);
CREATE INDEX IF NOT EXISTS idx_articles_level ON articles(assigned_level);

-- Quizzes (lead intro + questions as JSON)
CREATE TABLE IF NOT EXISTS quizzes (
    slug TEXT PRIMARY KEY,
    video_id TEXT,
    quiz_json TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Vocabulary lists, latest per slug wins
CREATE TABLE IF NOT EXISTS vocab_lists (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    video_id TEXT,
    vocab_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vocab_lists_slug ON vocab_lists(slug, created_at);

-- Users (identity from the OAuth provider)
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    subject TEXT NOT NULL,
    email TEXT,
    display_name TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (provider, subject)
);

-- Quiz attempts
CREATE TABLE IF NOT EXISTS quiz_attempts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    slug TEXT NOT NULL,
    video_id TEXT,
    total_questions INTEGER,
    correct_count INTEGER,
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    duration_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_slug ON quiz_attempts(user_id, slug);
CREATE INDEX IF NOT EXISTS idx_quiz_attempts_started ON quiz_attempts(started_at);

-- Favorite words (snapshot of the vocab item)
CREATE TABLE IF NOT EXISTS favorite_words (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    word TEXT NOT NULL,
    pronunciation TEXT,
    definition TEXT,
    example TEXT,
    slug TEXT,
    video_id TEXT,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, word)
);

-- Learning events (activity log for streaks and calendar)
CREATE TABLE IF NOT EXISTS learning_events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    slug TEXT,
    video_id TEXT,
    event_type TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    duration_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_learning_events_user ON learning_events(user_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_learning_events_slug ON learning_events(user_id, slug, event_type)
`
