// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package home

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/models"
)

// Service composes the home-page listing from the articles table
type Service struct {
	db *sqlx.DB

	// SQLite's LOWER() only folds ASCII
	foldASCII bool
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, foldASCII: db.DriverName() == cliparse.DatabaseSQLite}
}

// GetHomeData returns the filter options and the matching article rows.
// userID may be empty for anonymous visitors. Row-query failures are
// reported in FetchError, as the page still renders its filters.
func (s *Service) GetHomeData(ctx context.Context, p Params, userID string) models.HomeResponse {
	resp := models.HomeResponse{
		ChannelOptions:  []string{},
		CategoryOptions: []string{},
		LevelOptions:    []string{},
		Rows:            []models.Article{},
	}

	p.FoldASCII = s.foldASCII
	s.loadOptions(ctx, &resp)

	slugFilter := s.completionFilter(ctx, p, userID)
	if slugFilter != nil && len(slugFilter) == 0 {
		return resp
	}

	query, args, err := BuildListQuery(p, slugFilter)
	if err != nil {
		msg := err.Error()
		resp.FetchError = &msg
		return resp
	}

	var rows []models.Article
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		slog.Error("failed to query articles", "error", err)
		msg := err.Error()
		resp.FetchError = &msg
		return resp
	}
	if rows != nil {
		resp.Rows = rows
	}

	return resp
}

// loadOptions fills the filter dropdowns; on failure they stay empty
func (s *Service) loadOptions(ctx context.Context, resp *models.HomeResponse) {
	query, args := OptionsQuery()

	var rows []struct {
		Channel  sql.NullString `db:"channel_name"`
		Category sql.NullString `db:"assigned_category"`
		Level    sql.NullString `db:"assigned_level"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		slog.Error("failed to query filter options", "error", err)
		return
	}

	channels := make([]string, 0, len(rows))
	categories := make([]string, 0, len(rows))
	levels := make([]string, 0, len(rows))
	for _, r := range rows {
		channels = append(channels, r.Channel.String)
		categories = append(categories, r.Category.String)
		levels = append(levels, r.Level.String)
	}

	resp.ChannelOptions = UniqSorted(channels)
	resp.CategoryOptions = UniqSorted(categories)
	resp.LevelOptions = UniqSorted(levels)
}

// completionFilter returns nil when no slug restriction applies
func (s *Service) completionFilter(ctx context.Context, p Params, userID string) []string {
	if p.Completion == models.FilterAll {
		return nil
	}

	query, args := BuildSlugQuery(p)
	var candidates []string
	if err := s.db.SelectContext(ctx, &candidates, s.db.Rebind(query), args...); err != nil {
		slog.Error("failed to query candidate slugs", "error", err)
		return nil
	}

	if userID == "" {
		if p.Completion == models.CompletionComplete {
			return []string{}
		}
		return nonNil(candidates)
	}

	if len(candidates) == 0 {
		return []string{}
	}

	query, args, err := CompletedQuery(userID, candidates)
	if err != nil {
		slog.Error("failed to build completion query", "error", err)
		return nil
	}
	var done []string
	if err := s.db.SelectContext(ctx, &done, s.db.Rebind(query), args...); err != nil {
		slog.Error("failed to query completed attempts", "error", err)
		return nil
	}

	return SplitByCompletion(candidates, done, p.Completion == models.CompletionComplete)
}

// SplitByCompletion keeps the candidates that are (or are not) completed,
// preserving candidate order.
func SplitByCompletion(candidates, completed []string, wantComplete bool) []string {
	set := make(map[string]struct{}, len(completed))
	for _, s := range completed {
		if s != "" {
			set[s] = struct{}{}
		}
	}

	out := []string{}
	for _, c := range candidates {
		_, ok := set[c]
		if ok == wantComplete {
			out = append(out, c)
		}
	}
	return out
}

// UniqSorted trims, drops empties, dedupes and sorts
func UniqSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
