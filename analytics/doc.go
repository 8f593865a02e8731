// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package analytics aggregates a learner's activity into the account dashboard.

# Pure Aggregations

The functions in analytics.go take already-loaded rows and a location:

  - Overview: attempt, question and accuracy totals
  - ActiveDays and Streaks: current and longest run of active days
  - DailyAttempts, Cumulative, DailyScores: 30-day series
  - Calendar: 90-day activity grid with a 0-4 intensity level

Days are YYYY-MM-DD strings (DayLayout) in the configured timezone. A day
is active when it has a completed attempt or any learning event.

# Service

Service loads the rows for one user concurrently and builds a Dashboard:

	svc := analytics.NewService(db, cfg.Location())
	dash, err := svc.Dashboard(ctx, userID, time.Now())
*/
package analytics
