// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

const (
	favoritesExportName = "sabacan365-favorite-words"
	favoritesSheet      = "Favorites"
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var favoriteColumns = []string{"word", "pronunciation", "definition", "example", "slug", "video_id", "created_at"}

type FavoriteHandler struct {
	db  *sqlx.DB
	cfg cliparse.Config
}

func NewFavoriteHandler(db *sqlx.DB, cfg cliparse.Config) *FavoriteHandler {
	return &FavoriteHandler{db: db, cfg: cfg}
}

// ListFavorites handles GET /favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	favorites, err := h.loadFavorites(r.Context(), userID, limit)
	if err != nil {
		slog.Error("failed to load favorites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FavoritesResponse{Favorites: favorites})
}

// PutFavorite handles PUT /favorites
func (h *FavoriteHandler) PutFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req models.FavoriteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Word = strings.TrimSpace(req.Word)
	if req.Word == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "word is required")
		return
	}

	fav := models.FavoriteWord{
		UserID:        userID,
		Word:          req.Word,
		Pronunciation: req.Pronunciation,
		Definition:    req.Definition,
		Example:       req.Example,
		Slug:          req.Slug,
		VideoID:       req.VideoID,
		CreatedAt:     time.Now().UTC(),
	}

	tx, err := h.db.BeginTxx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	// A repeated save refreshes the snapshot and moves it to the top
	_, err = tx.NamedExecContext(r.Context(), `
		INSERT INTO favorite_words (user_id, word, pronunciation, definition, example, slug, video_id, created_at)
		VALUES (:user_id, :word, :pronunciation, :definition, :example, :slug, :video_id, :created_at)
		ON CONFLICT (user_id, word) DO UPDATE SET
			pronunciation = excluded.pronunciation,
			definition = excluded.definition,
			example = excluded.example,
			slug = excluded.slug,
			video_id = excluded.video_id,
			created_at = excluded.created_at
	`, fav)
	if err != nil {
		slog.Error("failed to upsert favorite", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := insertEvent(r.Context(), tx, userID, req.Slug, req.VideoID, models.EventFavoriteAdd, fav.CreatedAt, nil); err != nil {
		slog.Error("failed to record favorite event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit favorite", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("favorite saved", "word", fav.Word)

	middleware.JSONResponse(w, http.StatusOK, fav)
}

// DeleteFavorite handles DELETE /favorites/{word}
func (h *FavoriteHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	word := strings.TrimSpace(r.PathValue("word"))
	if word == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "word is required")
		return
	}

	res, err := h.db.ExecContext(r.Context(), h.db.Rebind(`
		DELETE FROM favorite_words WHERE user_id = ? AND word = ?
	`), userID, word)
	if err != nil {
		slog.Error("failed to delete favorite", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read affected rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Favorite not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV handles GET /favorites/export.csv
func (h *FavoriteHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	favorites, err := h.loadFavorites(r.Context(), userID, 0)
	if err != nil {
		slog.Error("failed to load favorites for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "CSV export failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, favoritesExportName))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(favoriteColumns)
	for _, f := range favorites {
		cw.Write(favoriteRecord(f))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write CSV", "error", err)
	}
}

// ExportXLSX handles GET /favorites/export.xlsx
func (h *FavoriteHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	favorites, err := h.loadFavorites(r.Context(), userID, 0)
	if err != nil {
		slog.Error("failed to load favorites for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "XLSX export failed: "+err.Error())
		return
	}

	f, err := favoritesWorkbook(favorites)
	if err != nil {
		slog.Error("failed to build workbook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "XLSX export failed: "+err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, favoritesExportName))
	w.WriteHeader(http.StatusOK)

	if err := f.Write(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

// loadFavorites returns the user's favorites newest first; limit 0 means all
func (h *FavoriteHandler) loadFavorites(ctx context.Context, userID string, limit int) ([]models.FavoriteWord, error) {
	query := `
		SELECT user_id, word, pronunciation, definition, example, slug, video_id, created_at
		FROM favorite_words
		WHERE user_id = ?
		ORDER BY created_at DESC, word ASC`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	favorites := []models.FavoriteWord{}
	if err := h.db.SelectContext(ctx, &favorites, h.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return favorites, nil
}

func favoriteRecord(f models.FavoriteWord) []string {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return []string{
		f.Word,
		deref(f.Pronunciation),
		deref(f.Definition),
		deref(f.Example),
		deref(f.Slug),
		deref(f.VideoID),
		f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// favoritesWorkbook lays the favorites out on a single sheet with a header row
func favoritesWorkbook(favorites []models.FavoriteWord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetList()[0], favoritesSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(favoritesSheet, "A1", &favoriteColumns); err != nil {
		f.Close()
		return nil, err
	}
	for i, fav := range favorites {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		record := favoriteRecord(fav)
		if err := f.SetSheetRow(favoritesSheet, cell, &record); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
