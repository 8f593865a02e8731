// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/importer"
	"github.com/danielhkuo/sabacan365/middleware"
)

// maxImportBytes caps admin upload bodies
const maxImportBytes = 10 << 20

type AdminHandler struct {
	db       *sqlx.DB
	cfg      cliparse.Config
	importer *importer.Importer
}

func NewAdminHandler(db *sqlx.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, importer: importer.New(db)}
}

func (h *AdminHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// ImportContent handles POST /admin/import
func (h *AdminHandler) ImportContent(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	result, err := h.importer.ImportYAML(r.Context(), body)
	if err != nil {
		slog.Error("content import failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// ImportVocabulary handles POST /admin/articles/{slug}/vocabulary
func (h *AdminHandler) ImportVocabulary(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	slug := r.PathValue("slug")

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	result, err := h.importer.ImportVocabXLSX(r.Context(), body, slug)
	switch {
	case errors.Is(err, importer.ErrUnknownArticle):
		middleware.ErrorResponse(w, http.StatusNotFound, "No article found for slug: "+slug)
		return
	case errors.Is(err, importer.ErrSlugRequired):
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	case err != nil:
		slog.Error("vocabulary import failed", "slug", slug, "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}
