// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/sabacan365/models"
)

const (
	seriesDays      = 30
	calendarDays    = 90
	recentFavorites = 12
)

// Dashboard is the account page payload
type Dashboard struct {
	Overview           OverviewStats         `json:"overview"`
	TotalQuizTime      string                `json:"total_quiz_time"`
	LastQuizAgo        *string               `json:"last_quiz_ago"`
	Streaks            StreakStats           `json:"streaks"`
	AttemptsDaily      []DayCount            `json:"attempts_daily"`
	AttemptsCumulative []CumulativeDay       `json:"attempts_cumulative"`
	ScoresDaily        []DayScore            `json:"scores_daily"`
	Calendar           []CalendarDay         `json:"calendar"`
	RecentFavorites    []models.FavoriteWord `json:"recent_favorites"`
}

// Service loads a user's rows and aggregates them into a Dashboard.
// Days are bucketed in loc.
type Service struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewService(db *sqlx.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc}
}

// Dashboard builds the account analytics for userID as of now
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (Dashboard, error) {
	var (
		attempts   []models.QuizAttempt
		eventTimes []time.Time
		recent     []models.LearningEvent
		favorites  []models.FavoriteWord
	)

	y, m, d := now.In(s.loc).Date()
	calendarStart := time.Date(y, m, d-(calendarDays-1), 0, 0, 0, 0, s.loc).UTC()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.SelectContext(gctx, &attempts, s.db.Rebind(`
			SELECT id, user_id, slug, video_id, total_questions, correct_count,
			       started_at, completed_at, duration_seconds
			FROM quiz_attempts
			WHERE user_id = ? AND completed_at IS NOT NULL
			ORDER BY completed_at
		`), userID)
		if err != nil {
			return fmt.Errorf("failed to load attempts: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.SelectContext(gctx, &eventTimes, s.db.Rebind(`
			SELECT occurred_at FROM learning_events WHERE user_id = ?
		`), userID)
		if err != nil {
			return fmt.Errorf("failed to load activity: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.SelectContext(gctx, &recent, s.db.Rebind(`
			SELECT id, user_id, slug, video_id, event_type, occurred_at, duration_seconds
			FROM learning_events
			WHERE user_id = ? AND occurred_at >= ?
			ORDER BY occurred_at
		`), userID, calendarStart)
		if err != nil {
			return fmt.Errorf("failed to load learning events: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.SelectContext(gctx, &favorites, s.db.Rebind(`
			SELECT user_id, word, pronunciation, definition, example, slug, video_id, created_at
			FROM favorite_words
			WHERE user_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`), userID, recentFavorites)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return s.build(attempts, eventTimes, recent, favorites, now), nil
}

func (s *Service) build(attempts []models.QuizAttempt, eventTimes []time.Time, recent []models.LearningEvent, favorites []models.FavoriteWord, now time.Time) Dashboard {
	overview := Overview(attempts)
	daily := DailyAttempts(attempts, now, seriesDays, s.loc)

	dash := Dashboard{
		Overview:           overview,
		TotalQuizTime:      FormatDuration(overview.TotalQuizSeconds),
		Streaks:            Streaks(ActiveDays(attempts, eventTimes, s.loc), DayKey(now, s.loc)),
		AttemptsDaily:      daily,
		AttemptsCumulative: Cumulative(daily),
		ScoresDaily:        DailyScores(attempts, now, seriesDays, s.loc),
		Calendar:           Calendar(recent, now, calendarDays, s.loc),
		RecentFavorites:    favorites,
	}
	if dash.RecentFavorites == nil {
		dash.RecentFavorites = []models.FavoriteWord{}
	}
	if overview.LastQuizCompletedAt != nil {
		ago := humanize.RelTime(*overview.LastQuizCompletedAt, now, "ago", "from now")
		dash.LastQuizAgo = &ago
	}

	return dash
}
