// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/middleware"
	"github.com/danielhkuo/sabacan365/models"
)

type EventHandler struct {
	db  *sqlx.DB
	cfg cliparse.Config
}

func NewEventHandler(db *sqlx.DB, cfg cliparse.Config) *EventHandler {
	return &EventHandler{db: db, cfg: cfg}
}

// CreateEvent handles POST /learning-events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req models.LearningEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// quiz_complete and favorite_add are only recorded by the server
	switch req.EventType {
	case models.EventVideoStart, models.EventVocabReview:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_type must be video_start or vocab_review")
		return
	}

	if req.DurationSeconds != nil && *req.DurationSeconds < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "duration_seconds must not be negative")
		return
	}

	now := time.Now().UTC()
	eventID, err := insertEvent(r.Context(), h.db, userID, req.Slug, req.VideoID, req.EventType, now, req.DurationSeconds)
	if err != nil {
		slog.Error("failed to insert learning event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("learning event recorded", "event_type", req.EventType)

	middleware.JSONResponse(w, http.StatusCreated, models.LearningEvent{
		ID:              eventID,
		UserID:          userID,
		Slug:            req.Slug,
		VideoID:         req.VideoID,
		EventType:       req.EventType,
		OccurredAt:      now,
		DurationSeconds: req.DurationSeconds,
	})
}

// insertEvent appends a learning event through db or an open transaction
// and returns its ID
func insertEvent(ctx context.Context, ex sqlx.ExtContext, userID string, slug, videoID *string, eventType string, at time.Time, duration *int) (string, error) {
	id := auth.GenerateID()
	_, err := ex.ExecContext(ctx, ex.Rebind(`
		INSERT INTO learning_events (id, user_id, slug, video_id, event_type, occurred_at, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, userID, slug, videoID, eventType, at, duration)
	if err != nil {
		return "", fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}
	return id, nil
}
