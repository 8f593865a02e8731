// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}

	t.Run("database down", func(t *testing.T) {
		db.Close()

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "sabacan365 API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// 400, 401, 404 and 503 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"GET", "/articles"},
		{"GET", "/articles/test-slug"},

		{"POST", "/quiz-attempts/start"},
		{"POST", "/quiz-attempts/complete"},

		{"GET", "/favorites"},
		{"PUT", "/favorites"},
		{"DELETE", "/favorites/word"},
		{"GET", "/favorites/export.csv"},
		{"GET", "/favorites/export.xlsx"},

		{"POST", "/learning-events"},
		{"GET", "/account"},

		{"GET", "/auth/login"},
		{"GET", "/auth/callback"},
		{"POST", "/auth/logout"},
		{"GET", "/auth/me"},

		{"POST", "/admin/import"},
		{"POST", "/admin/articles/test-slug/vocabulary"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"DELETE article", "DELETE", "/articles/test-slug", http.StatusMethodNotAllowed},
		{"preflight", "OPTIONS", "/favorites", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestSessionRequiredRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)
	userID := testutil.CreateTestUser(t, db, "learner")
	token := auth.IssueSessionToken(userID, cfg.SessionSecret, time.Hour, time.Now())

	paths := []string{"/favorites", "/account", "/auth/me"}

	for _, path := range paths {
		t.Run("anonymous "+path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 for %s, got %d", path, w.Code)
			}
		})

		t.Run("cookie "+path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected 200 for %s, got %d. Body: %s", path, w.Code, w.Body.String())
			}
		})
	}

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}
