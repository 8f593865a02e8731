// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/sabacan365/models"
	"github.com/danielhkuo/sabacan365/testutil"
)

// TestConcurrentFavoriteSaves verifies that many users saving the same word
// at once each end up with exactly one favorite and one event
func TestConcurrentFavoriteSaves(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	favoriteHandler := NewFavoriteHandler(db, cfg)

	numUsers := 10
	userIDs := make([]string, numUsers)
	for i := 0; i < numUsers; i++ {
		userIDs[i] = testutil.CreateTestUser(t, db, fmt.Sprintf("learner-%d", i))
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numUsers; i++ {
		wg.Add(1)
		go func(userIdx int) {
			defer wg.Done()

			req := testutil.MakeRequest("PUT", "/favorites", models.FavoriteRequest{Word: "horizon"}, nil)
			req = testutil.AsUser(req, userIDs[userIdx])
			w := httptest.NewRecorder()

			favoriteHandler.PutFavorite(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numUsers {
		t.Errorf("Expected %d successful saves, got %d", numUsers, successCount.Load())
	}

	var favoriteCount int
	if err := db.Get(&favoriteCount, db.Rebind("SELECT COUNT(*) FROM favorite_words WHERE word = ?"), "horizon"); err != nil {
		t.Fatalf("Failed to count favorites: %v", err)
	}
	if favoriteCount != numUsers {
		t.Errorf("Expected %d favorites in database, got %d", numUsers, favoriteCount)
	}

	var eventCount int
	if err := db.Get(&eventCount, db.Rebind("SELECT COUNT(*) FROM learning_events WHERE event_type = ?"), models.EventFavoriteAdd); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if eventCount != numUsers {
		t.Errorf("Expected %d favorite_add events, got %d", numUsers, eventCount)
	}
}

// TestConcurrentCompletion verifies that racing completions of the same
// attempt record it only once
func TestConcurrentCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	attemptHandler := NewAttemptHandler(db, cfg)

	testutil.CreateTestArticle(t, db, "quiz", testutil.ArticleOpts{})
	testutil.CreateTestQuiz(t, db, "quiz", sampleQuiz())
	userID := testutil.CreateTestUser(t, db, "learner")
	attemptID := testutil.CreateTestAttempt(t, db, userID, "quiz", time.Now().UTC().Add(-time.Minute), nil, 0, 0)

	numRequests := 5
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := models.CompleteAttemptRequest{Slug: "quiz", AttemptID: attemptID, Answers: []string{"a", "d", "e"}}
			req := testutil.AsUser(testutil.MakeRequest("POST", "/quiz-attempts/complete", body, nil), userID)
			w := httptest.NewRecorder()

			attemptHandler.CompleteAttempt(w, req)

			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}

	wg.Wait()

	if okCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful completion, got %d", okCount.Load())
	}
	if int(conflictCount.Load()) != numRequests-1 {
		t.Errorf("Expected %d conflicts, got %d", numRequests-1, conflictCount.Load())
	}

	var eventCount int
	if err := db.Get(&eventCount, db.Rebind("SELECT COUNT(*) FROM learning_events WHERE event_type = ?"), models.EventQuizComplete); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if eventCount != 1 {
		t.Errorf("Expected 1 quiz_complete event, got %d", eventCount)
	}
}
