// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/sabacan365/auth"
	"github.com/danielhkuo/sabacan365/models"
)

var (
	ErrUnknownFormat  = errors.New("unsupported import file type")
	ErrSlugRequired   = errors.New("slug is required for vocabulary sheets")
	ErrUnknownArticle = errors.New("article not found")
)

// Document is the YAML content file
type Document struct {
	Articles []ArticleDoc `yaml:"articles"`
}

// ArticleDoc describes one article with its optional quiz and vocabulary
type ArticleDoc struct {
	Slug          string                `yaml:"slug"`
	VideoID       string                `yaml:"video_id"`
	Title         string                `yaml:"title"`
	Channel       string                `yaml:"channel"`
	Category      string                `yaml:"category"`
	Level         string                `yaml:"level"`
	PublishedDate string                `yaml:"published_date"`
	ThumbnailURL  string                `yaml:"thumbnail_url"`
	VideoLength   string                `yaml:"video_length"`
	LeadIntro     string                `yaml:"lead_intro"`
	Quiz          []models.QuizQuestion `yaml:"quiz"`
	Vocabulary    []models.VocabItem    `yaml:"vocabulary"`
}

// Result holds the outcome of an import
type Result struct {
	Articles   int      `json:"articles"`
	Quizzes    int      `json:"quizzes"`
	VocabLists int      `json:"vocab_lists"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}

type Importer struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Importer {
	return &Importer{db: db}
}

// ImportFile picks the importer by extension: .yaml/.yml for content,
// .xlsx for a vocabulary sheet belonging to slug
func (im *Importer) ImportFile(ctx context.Context, path, slug string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return im.ImportYAML(ctx, f)
	case ".xlsx":
		return im.ImportVocabXLSX(ctx, f, slug)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

// ImportYAML upserts every article in the document. Rows that fail are
// reported in Result.Errors and do not stop the import.
func (im *Importer) ImportYAML(ctx context.Context, r io.Reader) (*Result, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	result := &Result{Errors: []string{}}
	now := time.Now().UTC()

	for i, a := range doc.Articles {
		a.Slug = strings.TrimSpace(a.Slug)
		if a.Slug == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Article %d: slug is required", i+1))
			continue
		}
		if err := validateArticle(a); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Article %s: %v", a.Slug, err))
			continue
		}

		if err := im.importArticle(ctx, a, now, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Article %s: %v", a.Slug, err))
			continue
		}
	}

	slog.Info("content import finished",
		"articles", result.Articles,
		"quizzes", result.Quizzes,
		"vocab_lists", result.VocabLists,
		"skipped", result.Skipped,
	)

	return result, nil
}

func validateArticle(a ArticleDoc) error {
	if a.PublishedDate != "" {
		if _, err := time.Parse("2006-01-02", a.PublishedDate); err != nil {
			return fmt.Errorf("published_date must be YYYY-MM-DD, got %q", a.PublishedDate)
		}
	}
	for i, q := range a.Quiz {
		if strings.TrimSpace(q.Question) == "" || q.Answer == "" {
			return fmt.Errorf("quiz question %d needs a question and an answer", i+1)
		}
		found := false
		for _, c := range q.Choices {
			if c == q.Answer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("quiz question %d: answer %q is not one of its choices", i+1, q.Answer)
		}
	}
	return nil
}

// importArticle writes one article and its content in a transaction and
// updates the counters only on commit
func (im *Importer) importArticle(ctx context.Context, a ArticleDoc, now time.Time, result *Result) error {
	tx, err := im.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO articles (slug, video_id, assigned_category, assigned_level, published_date,
		                      created_at, thumbnail_url, channel_name, video_title, video_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			video_id = excluded.video_id,
			assigned_category = excluded.assigned_category,
			assigned_level = excluded.assigned_level,
			published_date = excluded.published_date,
			thumbnail_url = excluded.thumbnail_url,
			channel_name = excluded.channel_name,
			video_title = excluded.video_title,
			video_length = excluded.video_length
	`), a.Slug, nullable(a.VideoID), nullable(a.Category), nullable(a.Level), nullable(a.PublishedDate),
		now, nullable(a.ThumbnailURL), nullable(a.Channel), nullable(a.Title), nullable(a.VideoLength))
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	wroteQuiz := false
	if len(a.Quiz) > 0 || a.LeadIntro != "" {
		payload := models.QuizPayload{LeadIntro: nullable(a.LeadIntro), Quiz: a.Quiz}
		if payload.Quiz == nil {
			payload.Quiz = []models.QuizQuestion{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode quiz: %w", err)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO quizzes (slug, video_id, quiz_json, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (slug) DO UPDATE SET
				video_id = excluded.video_id,
				quiz_json = excluded.quiz_json,
				updated_at = excluded.updated_at
		`), a.Slug, nullable(a.VideoID), string(raw), now)
		if err != nil {
			return fmt.Errorf("failed to upsert quiz: %w", err)
		}
		wroteQuiz = true
	}

	wroteVocab := false
	if items := cleanVocab(a.Vocabulary); len(items) > 0 {
		if err := insertVocab(ctx, tx, a.Slug, nullable(a.VideoID), items, now); err != nil {
			return err
		}
		wroteVocab = true
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	result.Articles++
	if wroteQuiz {
		result.Quizzes++
	}
	if wroteVocab {
		result.VocabLists++
	}
	return nil
}

// ImportVocabXLSX stores the first sheet of an XLSX workbook as a new
// vocabulary list for slug. Row 1 is a header; columns A-D are word,
// pronunciation, definition and example.
func (im *Importer) ImportVocabXLSX(ctx context.Context, r io.Reader, slug string) (*Result, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}

	var videoID *string
	err := im.db.GetContext(ctx, &videoID, im.db.Rebind(`SELECT video_id FROM articles WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArticle, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &Result{Errors: []string{}}
	var items []models.VocabItem
	for i, row := range rows {
		if i == 0 {
			continue
		}
		item := models.VocabItem{
			Word:          cell(row, 0),
			Pronunciation: cell(row, 1),
			Definition:    cell(row, 2),
			Example:       cell(row, 3),
		}
		if item.Word == "" {
			result.Skipped++
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		result.Errors = append(result.Errors, "no vocabulary rows found")
		return result, nil
	}

	if err := insertVocab(ctx, im.db, slug, videoID, items, time.Now().UTC()); err != nil {
		return nil, err
	}
	result.VocabLists++

	slog.Info("vocabulary sheet imported", "slug", slug, "words", len(items), "skipped", result.Skipped)

	return result, nil
}

func insertVocab(ctx context.Context, ex sqlx.ExtContext, slug string, videoID *string, items []models.VocabItem, now time.Time) error {
	raw, err := json.Marshal(models.VocabPayload{Vocabulary: items})
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	_, err = ex.ExecContext(ctx, ex.Rebind(`
		INSERT INTO vocab_lists (id, slug, video_id, vocab_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), auth.GenerateID(), slug, videoID, string(raw), now)
	if err != nil {
		return fmt.Errorf("failed to insert vocabulary: %w", err)
	}
	return nil
}

// cleanVocab trims words and drops entries without one
func cleanVocab(items []models.VocabItem) []models.VocabItem {
	out := make([]models.VocabItem, 0, len(items))
	for _, it := range items {
		it.Word = strings.TrimSpace(it.Word)
		if it.Word == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
