// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/handlers"
	"github.com/danielhkuo/sabacan365/middleware"
)

func NewRouter(db *sqlx.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Login stays disabled until OAuth credentials are configured
	var provider auth.IdentityProvider
	if cfg.OAuthEnabled() {
		provider = auth.NewGoogleProvider(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.BaseURL)
	} else {
		slog.Warn("OAuth client not configured, login disabled")
	}

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(db, cfg)
	attemptHandler := handlers.NewAttemptHandler(db, cfg)
	favoriteHandler := handlers.NewFavoriteHandler(db, cfg)
	eventHandler := handlers.NewEventHandler(db, cfg)
	accountHandler := handlers.NewAccountHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(db, cfg, provider)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Content (public)
	mux.HandleFunc("GET /articles", middleware.WithLogging(articleHandler.ListArticles))
	mux.HandleFunc("GET /articles/{slug}", middleware.WithLogging(articleHandler.GetArticle))

	// Quiz attempts (handlers answer 401 themselves after validating input)
	mux.HandleFunc("POST /quiz-attempts/start", middleware.WithLogging(attemptHandler.StartAttempt))
	mux.HandleFunc("POST /quiz-attempts/complete", middleware.WithLogging(attemptHandler.CompleteAttempt))

	// Favorites
	mux.HandleFunc("GET /favorites", middleware.WithLogging(middleware.RequireUser(favoriteHandler.ListFavorites)))
	mux.HandleFunc("PUT /favorites", middleware.WithLogging(middleware.RequireUser(favoriteHandler.PutFavorite)))
	mux.HandleFunc("DELETE /favorites/{word}", middleware.WithLogging(middleware.RequireUser(favoriteHandler.DeleteFavorite)))
	mux.HandleFunc("GET /favorites/export.csv", middleware.WithLogging(middleware.RequireUser(favoriteHandler.ExportCSV)))
	mux.HandleFunc("GET /favorites/export.xlsx", middleware.WithLogging(middleware.RequireUser(favoriteHandler.ExportXLSX)))

	// Activity and analytics
	mux.HandleFunc("POST /learning-events", middleware.WithLogging(middleware.RequireUser(eventHandler.CreateEvent)))
	mux.HandleFunc("GET /account", middleware.WithLogging(middleware.RequireUser(accountHandler.GetDashboard)))

	// Authentication
	mux.HandleFunc("GET /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/callback", middleware.WithLogging(authHandler.Callback))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(middleware.RequireUser(authHandler.Me)))

	// Content management (requires X-Admin-Key)
	mux.HandleFunc("POST /admin/import", middleware.WithLogging(adminHandler.ImportContent))
	mux.HandleFunc("POST /admin/articles/{slug}/vocabulary", middleware.WithLogging(adminHandler.ImportVocabulary))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sabacan365 API v1"))
	})

	return middleware.CORS(middleware.WithSession(cfg.SessionSecret, mux))
}
