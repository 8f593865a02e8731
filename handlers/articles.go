// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/home"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

const youtubeEmbedBase = "https://www.youtube.com/embed/"

type ArticleHandler struct {
	db   *sqlx.DB
	cfg  cliparse.Config
	home *home.Service
}

func NewArticleHandler(db *sqlx.DB, cfg cliparse.Config) *ArticleHandler {
	return &ArticleHandler{db: db, cfg: cfg, home: home.NewService(db)}
}

// ListArticles handles GET /articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	params := home.ParseParams(r.URL.Query())

	resp := h.home.GetHomeData(r.Context(), params, userID)
	if resp.FetchError != nil {
		slog.Warn("article list degraded", "error", *resp.FetchError)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetArticle handles GET /articles/{slug}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var (
		article  *models.Article
		quizRow  *models.QuizRow
		vocabRow *models.VocabRow
	)

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var a models.Article
		err := h.db.GetContext(ctx, &a, h.db.Rebind(`
			SELECT slug, video_id, assigned_category, assigned_level, published_date, created_at,
			       thumbnail_url, channel_name, video_title, video_length
			FROM articles WHERE slug = ?
		`), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("article: %w", err)
		}
		article = &a
		return nil
	})

	g.Go(func() error {
		var q models.QuizRow
		err := h.db.GetContext(ctx, &q, h.db.Rebind(`
			SELECT slug, video_id, quiz_json, updated_at FROM quizzes WHERE slug = ?
		`), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("quiz: %w", err)
		}
		quizRow = &q
		return nil
	})

	g.Go(func() error {
		var v models.VocabRow
		err := h.db.GetContext(ctx, &v, h.db.Rebind(`
			SELECT id, slug, video_id, vocab_json, created_at FROM vocab_lists
			WHERE slug = ?
			ORDER BY created_at DESC
			LIMIT 1
		`), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("vocabulary: %w", err)
		}
		vocabRow = &v
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("failed to load article", "slug", slug, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if article == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No article found for slug: "+slug)
		return
	}

	resp := models.ArticleResponse{
		Article:       *article,
		VideoEmbedURL: embedURL(article.VideoID),
		Quiz:          []models.QuizQuestion{},
		Vocabulary:    []models.VocabItem{},
		FavoriteWords: []string{},
	}
	if quizRow != nil {
		resp.LeadIntro, resp.Quiz = decodeQuiz(quizRow.QuizJSON)
	}
	if vocabRow != nil {
		resp.Vocabulary = decodeVocab(vocabRow.VocabJSON)
	}

	if userID, ok := middleware.UserID(r.Context()); ok && len(resp.Vocabulary) > 0 {
		words, err := h.favoritedWords(r, userID, resp.Vocabulary)
		if err != nil {
			// the page still works without the highlight
			slog.Warn("failed to load favorited words", "slug", slug, "error", err)
		} else {
			resp.FavoriteWords = words
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// favoritedWords returns the page words the user has already saved
func (h *ArticleHandler) favoritedWords(r *http.Request, userID string, items []models.VocabItem) ([]string, error) {
	words := make([]string, 0, len(items))
	for _, it := range items {
		if it.Word != "" {
			words = append(words, it.Word)
		}
	}
	if len(words) == 0 {
		return []string{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT word FROM favorite_words WHERE user_id = ? AND word IN (?) ORDER BY word
	`, userID, words)
	if err != nil {
		return nil, err
	}

	found := []string{}
	if err := h.db.SelectContext(r.Context(), &found, h.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return found, nil
}

func embedURL(videoID *string) *string {
	if videoID == nil || *videoID == "" {
		return nil
	}
	u := youtubeEmbedBase + *videoID
	return &u
}

// decodeQuiz reads a stored quiz document. Malformed JSON yields no lead
// and an empty quiz.
func decodeQuiz(raw string) (*string, []models.QuizQuestion) {
	var payload models.QuizPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		slog.Warn("malformed quiz_json", "error", err)
		return nil, []models.QuizQuestion{}
	}
	if payload.Quiz == nil {
		payload.Quiz = []models.QuizQuestion{}
	}
	return payload.LeadIntro, payload.Quiz
}

// decodeVocab reads a stored vocabulary document; malformed JSON yields
// an empty list
func decodeVocab(raw string) []models.VocabItem {
	var payload models.VocabPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		slog.Warn("malformed vocab_json", "error", err)
		return []models.VocabItem{}
	}
	if payload.Vocabulary == nil {
		return []models.VocabItem{}
	}
	return payload.Vocabulary
}
