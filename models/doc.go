// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines row, payload, request and response types for the API.

# Row Types

  - Article, QuizRow, VocabRow: Content
  - User: Signed-in learner
  - QuizAttempt, FavoriteWord, LearningEvent: Per-user activity

# Payloads

Quizzes and vocabulary lists are stored as JSON text:

  - QuizPayload: lead_intro and quiz (QuizQuestion list)
  - VocabPayload: vocabulary (VocabItem list)

# Constants

Learning event types:

	EventVideoStart   = "video_start"
	EventQuizComplete = "quiz_complete"
	EventFavoriteAdd  = "favorite_add"
	EventVocabReview  = "vocab_review"

Home list filters use FilterAll, the Sort* and Order* values, and
CompletionComplete / CompletionOpen.
*/
package models
