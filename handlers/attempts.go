// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

// StudyCapSeconds bounds the time recorded for a single quiz
const StudyCapSeconds = 45 * 60

var (
	errAttemptNotFound  = errors.New("attempt not found")
	errAttemptCompleted = errors.New("attempt already completed")
)

type AttemptHandler struct {
	db  *sqlx.DB
	cfg cliparse.Config
}

func NewAttemptHandler(db *sqlx.DB, cfg cliparse.Config) *AttemptHandler {
	return &AttemptHandler{db: db, cfg: cfg}
}

// StartAttempt handles POST /quiz-attempts/start
func (h *AttemptHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.StartAttemptRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
		return
	}

	// Reuse the open attempt so reloading the page does not pile up rows
	var existing struct {
		ID        string    `db:"id"`
		StartedAt time.Time `db:"started_at"`
	}
	err := h.db.GetContext(r.Context(), &existing, h.db.Rebind(`
		SELECT id, started_at FROM quiz_attempts
		WHERE user_id = ? AND slug = ? AND completed_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`), userID, req.Slug)
	if err == nil {
		middleware.JSONResponse(w, http.StatusOK, models.StartAttemptResponse{
			AttemptID: existing.ID,
			StartedAt: existing.StartedAt,
		})
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query open attempt", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	attemptID := auth.GenerateID()
	startedAt := time.Now().UTC()

	_, err = h.db.ExecContext(r.Context(), h.db.Rebind(`
		INSERT INTO quiz_attempts (id, user_id, slug, video_id, total_questions, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), attemptID, userID, req.Slug, req.VideoID, req.TotalQuestions, startedAt)
	if err != nil {
		slog.Error("failed to insert attempt", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("attempt started", "attempt_id", attemptID, "slug", req.Slug)

	middleware.JSONResponse(w, http.StatusCreated, models.StartAttemptResponse{
		AttemptID: attemptID,
		StartedAt: startedAt,
	})
}

// CompleteAttempt handles POST /quiz-attempts/complete
func (h *AttemptHandler) CompleteAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteAttemptRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login to save progress")
		return
	}

	ctx := r.Context()

	// Quizzes imported without a video inherit the article's
	var quizRow models.QuizRow
	err := h.db.GetContext(ctx, &quizRow, h.db.Rebind(`
		SELECT q.slug, COALESCE(q.video_id, a.video_id) AS video_id, q.quiz_json, q.updated_at
		FROM quizzes q
		LEFT JOIN articles a ON a.slug = q.slug
		WHERE q.slug = ?
	`), req.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No quiz found for slug: "+req.Slug)
		return
	}
	if err != nil {
		slog.Error("failed to query quiz", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, quiz := decodeQuiz(quizRow.QuizJSON)
	if len(quiz) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "No quiz found for slug: "+req.Slug)
		return
	}

	results, correct, err := GradeAnswers(quiz, req.Answers)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	attemptID, startedAt, err := h.resolveAttempt(ctx, userID, req.Slug, req.AttemptID)
	switch {
	case errors.Is(err, errAttemptNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Attempt not found")
		return
	case errors.Is(err, errAttemptCompleted):
		middleware.ErrorResponse(w, http.StatusConflict, "Attempt already completed")
		return
	case err != nil:
		slog.Error("failed to resolve attempt", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now().UTC()
	isNew := attemptID == ""
	if isNew {
		attemptID = auth.GenerateID()
		startedAt = now
	}

	videoStart, err := h.latestVideoStart(ctx, userID, req.Slug)
	if err != nil {
		// fall back to the attempt's own start time
		slog.Warn("failed to query video_start", "error", err)
	}
	duration := StudySeconds(now, videoStart, startedAt)

	if err := h.saveCompletion(ctx, completion{
		attemptID: attemptID,
		isNew:     isNew,
		userID:    userID,
		slug:      req.Slug,
		videoID:   quizRow.VideoID,
		total:     len(quiz),
		correct:   correct,
		startedAt: startedAt,
		now:       now,
		duration:  duration,
	}); err != nil {
		if errors.Is(err, errAttemptCompleted) {
			middleware.ErrorResponse(w, http.StatusConflict, "Attempt already completed")
			return
		}
		slog.Error("failed to save attempt", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("attempt completed", "slug", req.Slug, "correct", correct, "total", len(quiz), "duration_seconds", duration)

	middleware.JSONResponse(w, http.StatusOK, models.CompleteAttemptResponse{
		AttemptID:       attemptID,
		TotalQuestions:  len(quiz),
		CorrectCount:    correct,
		ScorePercent:    math.Round(float64(correct)/float64(len(quiz))*1000) / 10,
		DurationSeconds: duration,
		CompletedAt:     now,
		Results:         results,
	})
}

// GradeAnswers compares answer i with question i. Every question must
// have a non-blank answer.
func GradeAnswers(quiz []models.QuizQuestion, answers []string) ([]models.QuestionResult, int, error) {
	if len(answers) != len(quiz) {
		return nil, 0, fmt.Errorf("expected %d answers, got %d", len(quiz), len(answers))
	}

	results := make([]models.QuestionResult, len(quiz))
	correct := 0
	for i, q := range quiz {
		answer := strings.TrimSpace(answers[i])
		if answer == "" {
			return nil, 0, fmt.Errorf("question %d is unanswered", i+1)
		}
		ok := answer == q.Answer
		if ok {
			correct++
		}
		results[i] = models.QuestionResult{
			Index:       i,
			Correct:     ok,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		}
	}
	return results, correct, nil
}

// StudySeconds is the time from the latest video start to now, capped at
// StudyCapSeconds. Without a usable video start it falls back to the time
// since the attempt started.
func StudySeconds(now time.Time, videoStart *time.Time, attemptStart time.Time) int {
	if videoStart != nil {
		if diff := int(now.Sub(*videoStart).Seconds()); diff > 0 {
			return min(diff, StudyCapSeconds)
		}
	}
	diff := int(now.Sub(attemptStart).Seconds())
	if diff < 0 {
		return 0
	}
	return min(diff, StudyCapSeconds)
}

// resolveAttempt picks the attempt to complete: the requested one, or the
// user's latest open attempt for slug. An empty ID means none exists.
func (h *AttemptHandler) resolveAttempt(ctx context.Context, userID, slug, requested string) (string, time.Time, error) {
	var row struct {
		ID          string     `db:"id"`
		UserID      string     `db:"user_id"`
		Slug        string     `db:"slug"`
		StartedAt   time.Time  `db:"started_at"`
		CompletedAt *time.Time `db:"completed_at"`
	}

	if requested != "" {
		err := h.db.GetContext(ctx, &row, h.db.Rebind(`
			SELECT id, user_id, slug, started_at, completed_at FROM quiz_attempts WHERE id = ?
		`), requested)
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, errAttemptNotFound
		}
		if err != nil {
			return "", time.Time{}, err
		}
		if row.UserID != userID || row.Slug != slug {
			return "", time.Time{}, errAttemptNotFound
		}
		if row.CompletedAt != nil {
			return "", time.Time{}, errAttemptCompleted
		}
		return row.ID, row.StartedAt, nil
	}

	err := h.db.GetContext(ctx, &row, h.db.Rebind(`
		SELECT id, user_id, slug, started_at, completed_at FROM quiz_attempts
		WHERE user_id = ? AND slug = ? AND completed_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`), userID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return row.ID, row.StartedAt, nil
}

func (h *AttemptHandler) latestVideoStart(ctx context.Context, userID, slug string) (*time.Time, error) {
	var at time.Time
	err := h.db.GetContext(ctx, &at, h.db.Rebind(`
		SELECT occurred_at FROM learning_events
		WHERE user_id = ? AND slug = ? AND event_type = ?
		ORDER BY occurred_at DESC
		LIMIT 1
	`), userID, slug, models.EventVideoStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

type completion struct {
	attemptID string
	isNew     bool
	userID    string
	slug      string
	videoID   *string
	total     int
	correct   int
	startedAt time.Time
	now       time.Time
	duration  int
}

// saveCompletion writes the graded attempt and its quiz_complete event in
// one transaction.
func (h *AttemptHandler) saveCompletion(ctx context.Context, c completion) error {
	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if !c.isNew {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE quiz_attempts
			SET total_questions = ?, correct_count = ?, completed_at = ?, duration_seconds = ?,
			    video_id = COALESCE(video_id, ?)
			WHERE id = ? AND completed_at IS NULL
		`), c.total, c.correct, c.now, c.duration, c.videoID, c.attemptID)
		if err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		if n == 0 {
			return errAttemptCompleted
		}
	} else {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO quiz_attempts (id, user_id, slug, video_id, total_questions, correct_count,
			                           started_at, completed_at, duration_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), c.attemptID, c.userID, c.slug, c.videoID, c.total, c.correct, c.startedAt, c.now, c.duration)
		if err != nil {
			return fmt.Errorf("failed to insert attempt: %w", err)
		}
	}

	if _, err := insertEvent(ctx, tx, c.userID, &c.slug, c.videoID, models.EventQuizComplete, c.now, &c.duration); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
