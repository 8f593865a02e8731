// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package home

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/sabacan365/models"
)

func TestParseParams(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		want  Params
	}{
		{
			name:  "defaults",
			query: "",
			want: Params{
				Sort: models.SortPublishedDate, Order: models.OrderDesc,
				Channel: "all", Category: "all", Level: "all", Completion: "all",
			},
		},
		{
			name:  "all values",
			query: "q=+news+&sort=created_at&order=asc&channel=BBC&category=Science&level=B2&completion=incomplete",
			want: Params{
				Q: "news", Sort: models.SortCreatedAt, Order: models.OrderAsc,
				Channel: "BBC", Category: "Science", Level: "B2", Completion: models.CompletionOpen,
			},
		},
		{
			name:  "unknown values fall back",
			query: "sort=title&order=sideways&completion=maybe&channel=+",
			want: Params{
				Sort: models.SortPublishedDate, Order: models.OrderDesc,
				Channel: "all", Category: "all", Level: "all", Completion: "all",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ParseParams(v))
		})
	}
}

func TestParams_Values(t *testing.T) {
	p := ParseParams(url.Values{})
	assert.Empty(t, p.Values(), "defaults should not be rendered")

	p.Q = "cat"
	p.Order = models.OrderAsc
	p.Level = "A1"
	assert.Equal(t, "level=A1&order=asc&q=cat", p.Values().Encode())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\_ a\\b`, escapeLike(`100% _real_ a\b`))
}

func TestBuildSlugQuery(t *testing.T) {
	p := ParseParams(url.Values{"q": {"Ab%"}, "channel": {"BBC"}})

	query, args := BuildSlugQuery(p)

	assert.True(t, strings.HasPrefix(query, "SELECT slug FROM articles WHERE "))
	assert.Contains(t, query, "LOWER(video_title) LIKE ?")
	assert.Contains(t, query, "channel_name = ?")
	assert.Equal(t, []interface{}{`%ab\%%`, `%ab\%%`, "BBC", candidatesLimit}, args)
}

func TestSearchPatternFolding(t *testing.T) {
	testCases := []struct {
		name      string
		foldASCII bool
		want      string
	}{
		{"unicode lowercase", false, "%école abc%"},
		{"ascii only", true, "%École abc%"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := ParseParams(url.Values{"q": {"École ABC"}})
			p.FoldASCII = tc.foldASCII

			_, args := BuildSlugQuery(p)
			require.NotEmpty(t, args)
			assert.Equal(t, tc.want, args[0])
		})
	}
}

func TestBuildListQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query, args, err := BuildListQuery(ParseParams(url.Values{}), nil)
		require.NoError(t, err)

		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY CASE WHEN published_date IS NULL THEN 1 ELSE 0 END, published_date DESC, slug DESC")
		assert.Equal(t, []interface{}{rowsLimit}, args)
	})

	t.Run("created_at ascending", func(t *testing.T) {
		p := ParseParams(url.Values{"sort": {"created_at"}, "order": {"asc"}})
		query, _, err := BuildListQuery(p, nil)
		require.NoError(t, err)

		assert.Contains(t, query, "created_at ASC, slug ASC")
	})

	t.Run("slug filter expands", func(t *testing.T) {
		p := ParseParams(url.Values{"level": {"B1"}})
		query, args, err := BuildListQuery(p, []string{"a", "b"})
		require.NoError(t, err)

		assert.Contains(t, query, "assigned_level = ? AND slug IN (?, ?)")
		assert.Equal(t, []interface{}{"B1", "a", "b", rowsLimit}, args)
	})

	t.Run("slug filter without base filter", func(t *testing.T) {
		query, args, err := BuildListQuery(ParseParams(url.Values{}), []string{"a"})
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE slug IN (?)")
		assert.Equal(t, []interface{}{"a", rowsLimit}, args)
	})
}

func TestCompletedQuery(t *testing.T) {
	query, args, err := CompletedQuery("user-1", []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Contains(t, query, "slug IN (?, ?, ?)")
	assert.Contains(t, query, "completed_at IS NOT NULL")
	assert.Equal(t, []interface{}{"user-1", "a", "b", "c", attemptsLimit}, args)
}

func TestSplitByCompletion(t *testing.T) {
	candidates := []string{"a", "b", "c", "d"}
	completed := []string{"d", "b", "", "zz"}

	assert.Equal(t, []string{"b", "d"}, SplitByCompletion(candidates, completed, true))
	assert.Equal(t, []string{"a", "c"}, SplitByCompletion(candidates, completed, false))
	assert.Equal(t, []string{}, SplitByCompletion(nil, completed, true))
}

func TestUniqSorted(t *testing.T) {
	got := UniqSorted([]string{" Beta", "Alpha", "", "Beta", "  ", "alpha"})
	assert.Equal(t, []string{"Alpha", "Beta", "alpha"}, got)
}
