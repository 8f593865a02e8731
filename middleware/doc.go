// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Sessions

WithSession resolves the session cookie or bearer token into a user ID on
the request context. Anonymous requests pass through:

	handler := middleware.WithSession(cfg.SessionSecret, mux)

	userID, ok := middleware.UserID(r.Context())

RequireUser answers 401 when no user is signed in:

	mux.HandleFunc("GET /account", middleware.RequireUser(h.GetDashboard))

# Request Logging

	mux.HandleFunc("GET /articles", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Echoes the caller's origin and allows credentials, so the frontend can send
the session cookie.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.FavoriteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
