// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/db"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "test.db")

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  cliparse.DatabaseSQLite,
		DatabaseURL:   ":memory:",
		BaseURL:       "http://localhost:3318",
		Timezone:      "UTC",
		SessionSecret: "test-session-secret",
		AdminKey:      "test-admin-key",
		AttemptTTL:    6 * time.Hour,
	}
}

// Str returns a pointer to s
func Str(s string) *string {
	return &s
}

// Int returns a pointer to n
func Int(n int) *int {
	return &n
}

// CreateTestUser inserts a user and returns its ID
func CreateTestUser(t *testing.T, conn *sqlx.DB, subject string) string {
	t.Helper()

	userID := auth.GenerateID()
	now := time.Now().UTC()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO users (id, provider, subject, email, display_name, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), userID, models.ProviderGoogle, subject, subject+"@example.com", subject, now, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// ArticleOpts holds the optional columns of a test article
type ArticleOpts struct {
	Title         string
	Channel       string
	Category      string
	Level         string
	PublishedDate string
	VideoID       string
	CreatedAt     time.Time
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateTestArticle inserts an article row
func CreateTestArticle(t *testing.T, conn *sqlx.DB, slug string, opts ArticleOpts) {
	t.Helper()

	createdAt := opts.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO articles (slug, video_id, assigned_category, assigned_level, published_date,
		                      created_at, thumbnail_url, channel_name, video_title, video_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), slug, nullable(opts.VideoID), nullable(opts.Category), nullable(opts.Level), nullable(opts.PublishedDate),
		createdAt, nil, nullable(opts.Channel), nullable(opts.Title), nil)
	if err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}
}

// CreateTestQuiz stores a quiz payload for slug
func CreateTestQuiz(t *testing.T, conn *sqlx.DB, slug string, payload models.QuizPayload) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal quiz: %v", err)
	}
	_, err = conn.Exec(conn.Rebind(`
		INSERT INTO quizzes (slug, video_id, quiz_json, updated_at) VALUES (?, ?, ?, ?)
	`), slug, nil, string(raw), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test quiz: %v", err)
	}
}

// CreateTestVocab stores a vocabulary list for slug created at the given time
func CreateTestVocab(t *testing.T, conn *sqlx.DB, slug string, items []models.VocabItem, createdAt time.Time) {
	t.Helper()

	raw, err := json.Marshal(models.VocabPayload{Vocabulary: items})
	if err != nil {
		t.Fatalf("Failed to marshal vocab: %v", err)
	}
	_, err = conn.Exec(conn.Rebind(`
		INSERT INTO vocab_lists (id, slug, video_id, vocab_json, created_at) VALUES (?, ?, ?, ?, ?)
	`), auth.GenerateID(), slug, nil, string(raw), createdAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test vocab: %v", err)
	}
}

// CreateTestAttempt inserts an attempt; completedAt nil leaves it open
func CreateTestAttempt(t *testing.T, conn *sqlx.DB, userID, slug string, startedAt time.Time, completedAt *time.Time, total, correct int) string {
	t.Helper()

	id := auth.GenerateID()
	var totalQ, correctQ, duration *int
	if completedAt != nil {
		totalQ, correctQ = &total, &correct
		d := int(completedAt.Sub(startedAt).Seconds())
		duration = &d
	}
	var completed *time.Time
	if completedAt != nil {
		c := completedAt.UTC()
		completed = &c
	}

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO quiz_attempts (id, user_id, slug, video_id, total_questions, correct_count,
		                           started_at, completed_at, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, userID, slug, nil, totalQ, correctQ, startedAt.UTC(), completed, duration)
	if err != nil {
		t.Fatalf("Failed to create test attempt: %v", err)
	}

	return id
}

// CreateTestEvent inserts a learning event
func CreateTestEvent(t *testing.T, conn *sqlx.DB, userID, slug, eventType string, at time.Time) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO learning_events (id, user_id, slug, video_id, event_type, occurred_at, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), auth.GenerateID(), userID, slug, nil, eventType, at.UTC(), nil)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser attaches a signed-in user to the request context
func AsUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
