// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package home

import (
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabacan365/models"
)

const (
	optionsLimit    = 5000
	candidatesLimit = 5000
	attemptsLimit   = 10000
	rowsLimit       = 60
)

// Params are the normalised home-page query parameters
type Params struct {
	Q          string
	Sort       string
	Order      string
	Channel    string
	Category   string
	Level      string
	Completion string

	// FoldASCII lowercases only A-Z in the search pattern, for databases
	// whose LOWER() leaves other letters untouched
	FoldASCII bool
}

// ParseParams reads the query string, falling back to defaults for
// missing or unknown values.
func ParseParams(v url.Values) Params {
	p := Params{
		Q:          strings.TrimSpace(v.Get("q")),
		Sort:       models.SortPublishedDate,
		Order:      models.OrderDesc,
		Channel:    orAll(v.Get("channel")),
		Category:   orAll(v.Get("category")),
		Level:      orAll(v.Get("level")),
		Completion: models.FilterAll,
	}

	switch s := strings.TrimSpace(v.Get("sort")); s {
	case models.SortPublishedDate, models.SortCreatedAt:
		p.Sort = s
	}
	switch o := strings.TrimSpace(v.Get("order")); o {
	case models.OrderAsc, models.OrderDesc:
		p.Order = o
	}
	switch c := strings.TrimSpace(v.Get("completion")); c {
	case models.CompletionComplete, models.CompletionOpen:
		p.Completion = c
	}

	return p
}

func orAll(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.FilterAll
	}
	return s
}

// Values renders p back to a query string, omitting defaults
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Q != "" {
		v.Set("q", p.Q)
	}
	if p.Sort != models.SortPublishedDate {
		v.Set("sort", p.Sort)
	}
	if p.Order != models.OrderDesc {
		v.Set("order", p.Order)
	}
	for k, val := range map[string]string{
		"channel":    p.Channel,
		"category":   p.Category,
		"level":      p.Level,
		"completion": p.Completion,
	} {
		if val != "" && val != models.FilterAll {
			v.Set(k, val)
		}
	}
	return v
}

// escapeLike makes q match literally inside a LIKE pattern
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// lowerASCII maps A-Z to a-z and keeps every other byte as is
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// foldSearch lowercases q the same way the database lowercases columns
func (p Params) foldSearch(q string) string {
	if p.FoldASCII {
		return lowerASCII(q)
	}
	return strings.ToLower(q)
}

// where builds the shared filter clause and its args
func (p Params) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if p.Q != "" {
		pattern := "%" + p.foldSearch(escapeLike(p.Q)) + "%"
		conds = append(conds, `(LOWER(video_title) LIKE ? ESCAPE '\' OR LOWER(channel_name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if p.Channel != models.FilterAll {
		conds = append(conds, "channel_name = ?")
		args = append(args, p.Channel)
	}
	if p.Category != models.FilterAll {
		conds = append(conds, "assigned_category = ?")
		args = append(args, p.Category)
	}
	if p.Level != models.FilterAll {
		conds = append(conds, "assigned_level = ?")
		args = append(args, p.Level)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// OptionsQuery selects the filter option columns
func OptionsQuery() (string, []interface{}) {
	return `SELECT channel_name, assigned_category, assigned_level FROM articles LIMIT ?`,
		[]interface{}{optionsLimit}
}

// BuildSlugQuery selects candidate slugs for the completion filter
func BuildSlugQuery(p Params) (string, []interface{}) {
	where, args := p.where()
	return "SELECT slug FROM articles" + where + " LIMIT ?", append(args, candidatesLimit)
}

// CompletedQuery selects the slugs among candidates the user has completed
func CompletedQuery(userID string, candidates []string) (string, []interface{}, error) {
	return sqlx.In(`
		SELECT DISTINCT slug FROM quiz_attempts
		WHERE user_id = ? AND slug IN (?) AND completed_at IS NOT NULL
		LIMIT ?`, userID, candidates, attemptsLimit)
}

// BuildListQuery selects the article rows. slugFilter nil means no slug
// restriction; callers must not pass an empty non-nil filter.
func BuildListQuery(p Params, slugFilter []string) (string, []interface{}, error) {
	where, args := p.where()

	if slugFilter != nil {
		if where == "" {
			where = " WHERE slug IN (?)"
		} else {
			where += " AND slug IN (?)"
		}
		args = append(args, slugFilter)
	}

	dir := "DESC"
	if p.Order == models.OrderAsc {
		dir = "ASC"
	}
	// p.Sort is whitelisted by ParseParams
	sortCol := models.SortPublishedDate
	if p.Sort == models.SortCreatedAt {
		sortCol = models.SortCreatedAt
	}

	query := `SELECT slug, video_id, assigned_category, assigned_level, published_date, created_at,
		thumbnail_url, channel_name, video_title, video_length
		FROM articles` + where +
		` ORDER BY CASE WHEN ` + sortCol + ` IS NULL THEN 1 ELSE 0 END, ` + sortCol + ` ` + dir + `, slug ` + dir +
		` LIMIT ?`
	args = append(args, rowsLimit)

	if slugFilter == nil {
		return query, args, nil
	}
	return sqlx.In(query, args...)
}
