// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/danielhkuo/sabacan365/models"
)

// DayLayout is the format of every day key
const DayLayout = "2006-01-02"

// OverviewStats summarises all completed attempts of a user
type OverviewStats struct {
	TotalAttempts          int        `json:"total_attempts"`
	TotalCorrect           int        `json:"total_correct"`
	TotalQuestions         int        `json:"total_questions"`
	OverallAccuracyPercent float64    `json:"overall_accuracy_percent"`
	AvgScorePercent        float64    `json:"avg_score_percent"`
	TotalQuizSeconds       int        `json:"total_quiz_seconds"`
	LastQuizCompletedAt    *time.Time `json:"last_quiz_completed_at"`
}

type StreakStats struct {
	LastActiveDay *string `json:"last_active_day"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
}

type DayCount struct {
	Day           string `json:"day"`
	AttemptsCount int    `json:"attempts_count"`
}

type CumulativeDay struct {
	Day                string `json:"day"`
	AttemptsCount      int    `json:"attempts_count"`
	AttemptsCumulative int    `json:"attempts_cumulative"`
}

type DayScore struct {
	Day             string  `json:"day"`
	AttemptsCount   int     `json:"attempts_count"`
	AvgScorePercent float64 `json:"avg_score_percent"`
	AccuracyPercent float64 `json:"accuracy_percent"`
}

// CalendarDay is one cell of the activity calendar. Level is the
// intensity bucket 0-4 derived from EventsCount.
type CalendarDay struct {
	Day                string `json:"day"`
	EventsCount        int    `json:"events_count"`
	DurationSecondsSum int    `json:"duration_seconds_sum"`
	DidQuiz            bool   `json:"did_quiz"`
	DidFavorite        bool   `json:"did_favorite"`
	DidReview          bool   `json:"did_review"`
	Level              int    `json:"level"`
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// DayKey returns the calendar day of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// LastDays returns n consecutive day keys ending with today, oldest first
func LastDays(today time.Time, n int, loc *time.Location) []string {
	y, m, d := today.In(loc).Date()
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		// noon keeps DST transitions from skipping or repeating a day
		days = append(days, time.Date(y, m, d-i, 12, 0, 0, 0, loc).Format(DayLayout))
	}
	return days
}

// Overview aggregates the completed attempts; open attempts are ignored
func Overview(attempts []models.QuizAttempt) OverviewStats {
	var stats OverviewStats
	var scoreSum float64
	var scored int

	for _, a := range attempts {
		if a.CompletedAt == nil {
			continue
		}
		stats.TotalAttempts++
		correct, total := deref(a.CorrectCount), deref(a.TotalQuestions)
		stats.TotalCorrect += correct
		stats.TotalQuestions += total
		stats.TotalQuizSeconds += deref(a.DurationSeconds)
		if total > 0 {
			scoreSum += float64(correct) / float64(total) * 100
			scored++
		}
		if stats.LastQuizCompletedAt == nil || a.CompletedAt.After(*stats.LastQuizCompletedAt) {
			completed := *a.CompletedAt
			stats.LastQuizCompletedAt = &completed
		}
	}

	if stats.TotalQuestions > 0 {
		stats.OverallAccuracyPercent = round1(100 * float64(stats.TotalCorrect) / float64(stats.TotalQuestions))
	}
	if scored > 0 {
		stats.AvgScorePercent = round1(scoreSum / float64(scored))
	}
	return stats
}

// ActiveDays lists the days with a learning event or a completed attempt
func ActiveDays(attempts []models.QuizAttempt, eventTimes []time.Time, loc *time.Location) []string {
	days := make([]string, 0, len(attempts)+len(eventTimes))
	for _, a := range attempts {
		if a.CompletedAt != nil {
			days = append(days, DayKey(*a.CompletedAt, loc))
		}
	}
	for _, t := range eventTimes {
		days = append(days, DayKey(t, loc))
	}
	return days
}

// Streaks computes the longest run of consecutive active days and the
// current run, which ends today or, when today has no activity yet,
// yesterday. Unparseable day keys are ignored.
func Streaks(activeDays []string, today string) StreakStats {
	var stats StreakStats

	set := make(map[string]struct{}, len(activeDays))
	var parsed []time.Time
	for _, d := range activeDays {
		if _, ok := set[d]; ok {
			continue
		}
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		set[d] = struct{}{}
		parsed = append(parsed, t)
	}
	if len(parsed) == 0 {
		return stats
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	last := parsed[len(parsed)-1].Format(DayLayout)
	stats.LastActiveDay = &last

	run := 1
	stats.LongestStreak = 1
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Sub(parsed[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}

	anchor, err := time.Parse(DayLayout, today)
	if err != nil {
		return stats
	}
	if _, ok := set[today]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
	}
	for {
		if _, ok := set[anchor.Format(DayLayout)]; !ok {
			break
		}
		stats.CurrentStreak++
		anchor = anchor.AddDate(0, 0, -1)
	}

	return stats
}

// DailyAttempts counts completed attempts per day over the last n days
func DailyAttempts(attempts []models.QuizAttempt, today time.Time, n int, loc *time.Location) []DayCount {
	counts := make(map[string]int)
	for _, a := range attempts {
		if a.CompletedAt != nil {
			counts[DayKey(*a.CompletedAt, loc)]++
		}
	}

	days := LastDays(today, n, loc)
	out := make([]DayCount, len(days))
	for i, d := range days {
		out[i] = DayCount{Day: d, AttemptsCount: counts[d]}
	}
	return out
}

// Cumulative adds a running total to a daily series
func Cumulative(daily []DayCount) []CumulativeDay {
	out := make([]CumulativeDay, len(daily))
	sum := 0
	for i, d := range daily {
		sum += d.AttemptsCount
		out[i] = CumulativeDay{Day: d.Day, AttemptsCount: d.AttemptsCount, AttemptsCumulative: sum}
	}
	return out
}

// DailyScores reports per-day average score and accuracy over the last
// n days; days without attempts are zero.
func DailyScores(attempts []models.QuizAttempt, today time.Time, n int, loc *time.Location) []DayScore {
	type bucket struct {
		count, correct, questions, scored int
		scoreSum                          float64
	}
	buckets := make(map[string]*bucket)

	for _, a := range attempts {
		if a.CompletedAt == nil {
			continue
		}
		key := DayKey(*a.CompletedAt, loc)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		correct, total := deref(a.CorrectCount), deref(a.TotalQuestions)
		b.count++
		b.correct += correct
		b.questions += total
		if total > 0 {
			b.scoreSum += float64(correct) / float64(total) * 100
			b.scored++
		}
	}

	days := LastDays(today, n, loc)
	out := make([]DayScore, len(days))
	for i, d := range days {
		out[i] = DayScore{Day: d}
		b, ok := buckets[d]
		if !ok {
			continue
		}
		out[i].AttemptsCount = b.count
		if b.scored > 0 {
			out[i].AvgScorePercent = round1(b.scoreSum / float64(b.scored))
		}
		if b.questions > 0 {
			out[i].AccuracyPercent = round1(100 * float64(b.correct) / float64(b.questions))
		}
	}
	return out
}

// CalendarLevel maps an event count to a 0-4 intensity
func CalendarLevel(events int) int {
	switch {
	case events <= 0:
		return 0
	case events >= 4:
		return 4
	default:
		return events
	}
}

// Calendar summarises learning events per day over the last n days
func Calendar(events []models.LearningEvent, today time.Time, n int, loc *time.Location) []CalendarDay {
	byDay := make(map[string]*CalendarDay)
	for _, e := range events {
		key := DayKey(e.OccurredAt, loc)
		c, ok := byDay[key]
		if !ok {
			c = &CalendarDay{Day: key}
			byDay[key] = c
		}
		c.EventsCount++
		c.DurationSecondsSum += deref(e.DurationSeconds)
		switch e.EventType {
		case models.EventQuizComplete:
			c.DidQuiz = true
		case models.EventFavoriteAdd:
			c.DidFavorite = true
		case models.EventVocabReview:
			c.DidReview = true
		}
	}

	days := LastDays(today, n, loc)
	out := make([]CalendarDay, len(days))
	for i, d := range days {
		if c, ok := byDay[d]; ok {
			out[i] = *c
		} else {
			out[i] = CalendarDay{Day: d}
		}
		out[i].Level = CalendarLevel(out[i].EventsCount)
	}
	return out
}

// FormatDuration renders seconds as "1h 2m", "3m 4s" or "5s"
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
