// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/sabacan365/models"
	"github.com/danielhkuo/sabacan365/testutil"
)

func TestFavoritesLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFavoriteHandler(db, cfg)
	userID := testutil.CreateTestUser(t, db, "learner")
	otherID := testutil.CreateTestUser(t, db, "other")

	put := func(body interface{}, user string) *httptest.ResponseRecorder {
		req := testutil.AsUser(testutil.MakeRequest("PUT", "/favorites", body, nil), user)
		w := httptest.NewRecorder()
		handler.PutFavorite(w, req)
		return w
	}
	list := func(query, user string) models.FavoritesResponse {
		req := testutil.AsUser(httptest.NewRequest("GET", "/favorites"+query, nil), user)
		w := httptest.NewRecorder()
		handler.ListFavorites(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.FavoritesResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	t.Run("empty word rejected", func(t *testing.T) {
		w := put(models.FavoriteRequest{Word: "  "}, userID)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("save records snapshot and event", func(t *testing.T) {
		w := put(models.FavoriteRequest{
			Word:       "horizon",
			Definition: testutil.Str("the boundary"),
			Slug:       testutil.Str("black-holes"),
		}, userID)
		testutil.AssertStatus(t, w, http.StatusOK)

		time.Sleep(10 * time.Millisecond)
		w = put(models.FavoriteRequest{Word: "singularity"}, userID)
		testutil.AssertStatus(t, w, http.StatusOK)

		resp := list("", userID)
		require.Len(t, resp.Favorites, 2)
		assert.Equal(t, "singularity", resp.Favorites[0].Word, "newest first")
		require.NotNil(t, resp.Favorites[1].Definition)
		assert.Equal(t, "the boundary", *resp.Favorites[1].Definition)

		assert.Equal(t, 2, countRows(t, db,
			`SELECT COUNT(*) FROM learning_events WHERE user_id = ? AND event_type = ?`, userID, models.EventFavoriteAdd))
		assert.Empty(t, list("", otherID).Favorites)
	})

	t.Run("resave upserts and moves to top", func(t *testing.T) {
		time.Sleep(10 * time.Millisecond)
		w := put(models.FavoriteRequest{Word: "horizon", Definition: testutil.Str("edge")}, userID)
		testutil.AssertStatus(t, w, http.StatusOK)

		resp := list("", userID)
		require.Len(t, resp.Favorites, 2)
		assert.Equal(t, "horizon", resp.Favorites[0].Word)
		assert.Equal(t, "edge", *resp.Favorites[0].Definition)
		assert.Nil(t, resp.Favorites[0].Slug, "snapshot is replaced, not merged")
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, list("?limit=1", userID).Favorites, 1)

		req := testutil.AsUser(httptest.NewRequest("GET", "/favorites?limit=x", nil), userID)
		w := httptest.NewRecorder()
		handler.ListFavorites(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		del := func(word string) *httptest.ResponseRecorder {
			req := testutil.AsUser(httptest.NewRequest("DELETE", "/favorites/"+word, nil), userID)
			req.SetPathValue("word", word)
			w := httptest.NewRecorder()
			handler.DeleteFavorite(w, req)
			return w
		}

		testutil.AssertStatus(t, del("horizon"), http.StatusNoContent)
		testutil.AssertStatus(t, del("horizon"), http.StatusNotFound)
		assert.Len(t, list("", userID).Favorites, 1)
	})
}

func seedFavorites(t *testing.T, handler *FavoriteHandler, userID string) {
	t.Helper()
	for _, fav := range []models.FavoriteRequest{
		{Word: "plain", Definition: testutil.Str("simple")},
		{Word: "quoted", Example: testutil.Str(`She said "hi", then left`), VideoID: testutil.Str("vid")},
	} {
		req := testutil.AsUser(testutil.MakeRequest("PUT", "/favorites", fav, nil), userID)
		w := httptest.NewRecorder()
		handler.PutFavorite(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewFavoriteHandler(db, testutil.GetTestConfig())
	userID := testutil.CreateTestUser(t, db, "learner")
	seedFavorites(t, handler, userID)

	req := testutil.AsUser(httptest.NewRequest("GET", "/favorites/export.csv", nil), userID)
	w := httptest.NewRecorder()
	handler.ExportCSV(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sabacan365-favorite-words.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, favoriteColumns, records[0])
	assert.Equal(t, "quoted", records[1][0])
	assert.Equal(t, `She said "hi", then left`, records[1][3])
	assert.Equal(t, "vid", records[1][5])
	assert.Equal(t, "plain", records[2][0])
	assert.Equal(t, "", records[2][1])
}

func TestExportXLSX(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewFavoriteHandler(db, testutil.GetTestConfig())
	userID := testutil.CreateTestUser(t, db, "learner")
	seedFavorites(t, handler, userID)

	req := testutil.AsUser(httptest.NewRequest("GET", "/favorites/export.xlsx", nil), userID)
	w := httptest.NewRecorder()
	handler.ExportXLSX(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(favoritesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, favoriteColumns, rows[0])
	assert.Equal(t, "quoted", rows[1][0])
	assert.Equal(t, "plain", rows[2][0])
}

func TestFavoritesWorkbook(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		favorites []models.FavoriteWord
		wantRows  int
	}{
		{"header only", nil, 1},
		{"one row per favorite", []models.FavoriteWord{
			{Word: "horizon", Definition: testutil.Str("the boundary"), CreatedAt: created},
			{Word: "orbit", Slug: testutil.Str("space"), VideoID: testutil.Str("vid"), CreatedAt: created},
		}, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := favoritesWorkbook(tc.favorites)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, []string{favoritesSheet}, f.GetSheetList())

			rows, err := f.GetRows(favoritesSheet)
			require.NoError(t, err)
			require.Len(t, rows, tc.wantRows)
			assert.Equal(t, favoriteColumns, rows[0])
			for i, fav := range tc.favorites {
				assert.Equal(t, fav.Word, rows[i+1][0])
				assert.Equal(t, created.Format(time.RFC3339), rows[i+1][6])
			}
		})
	}
}
