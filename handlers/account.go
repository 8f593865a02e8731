// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/analytics"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/middleware"
)

type AccountHandler struct {
	db        *sqlx.DB
	cfg       cliparse.Config
	analytics *analytics.Service
}

func NewAccountHandler(db *sqlx.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{
		db:        db,
		cfg:       cfg,
		analytics: analytics.NewService(db, cfg.Location()),
	}
}

// GetDashboard handles GET /account
func (h *AccountHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	dash, err := h.analytics.Dashboard(r.Context(), userID, time.Now())
	if err != nil {
		slog.Error("failed to build dashboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, dash)
}
