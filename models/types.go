package models

import "time"

// Learning event types
const (
	EventVideoStart   = "video_start"
	EventQuizComplete = "quiz_complete"
	EventFavoriteAdd  = "favorite_add"
	EventVocabReview  = "vocab_review"
)

// Home filter values
const (
	FilterAll          = "all"
	SortPublishedDate  = "published_date"
	SortCreatedAt      = "created_at"
	OrderAsc           = "asc"
	OrderDesc          = "desc"
	CompletionComplete = "complete"
	CompletionOpen     = "incomplete"
)

// Identity providers
const (
	ProviderGoogle = "google"
)

// Row types

type Article struct {
	Slug             string    `db:"slug" json:"slug"`
	VideoID          *string   `db:"video_id" json:"video_id"`
	AssignedCategory *string   `db:"assigned_category" json:"assigned_category"`
	AssignedLevel    *string   `db:"assigned_level" json:"assigned_level"`
	PublishedDate    *string   `db:"published_date" json:"published_date"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	ThumbnailURL     *string   `db:"thumbnail_url" json:"thumbnail_url"`
	ChannelName      *string   `db:"channel_name" json:"channel_name"`
	VideoTitle       *string   `db:"video_title" json:"video_title"`
	VideoLength      *string   `db:"video_length" json:"video_length"`
}

type QuizRow struct {
	Slug      string    `db:"slug"`
	VideoID   *string   `db:"video_id"`
	QuizJSON  string    `db:"quiz_json"`
	UpdatedAt time.Time `db:"updated_at"`
}

type VocabRow struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	VideoID   *string   `db:"video_id"`
	VocabJSON string    `db:"vocab_json"`
	CreatedAt time.Time `db:"created_at"`
}

type User struct {
	ID          string    `db:"id" json:"id"`
	Provider    string    `db:"provider" json:"provider"`
	Subject     string    `db:"subject" json:"-"`
	Email       *string   `db:"email" json:"email"`
	DisplayName *string   `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	LastLoginAt time.Time `db:"last_login_at" json:"last_login_at"`
}

type QuizAttempt struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"-"`
	Slug            string     `db:"slug" json:"slug"`
	VideoID         *string    `db:"video_id" json:"video_id"`
	TotalQuestions  *int       `db:"total_questions" json:"total_questions"`
	CorrectCount    *int       `db:"correct_count" json:"correct_count"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at"`
	DurationSeconds *int       `db:"duration_seconds" json:"duration_seconds"`
}

type FavoriteWord struct {
	UserID        string    `db:"user_id" json:"-"`
	Word          string    `db:"word" json:"word"`
	Pronunciation *string   `db:"pronunciation" json:"pronunciation"`
	Definition    *string   `db:"definition" json:"definition"`
	Example       *string   `db:"example" json:"example"`
	Slug          *string   `db:"slug" json:"slug"`
	VideoID       *string   `db:"video_id" json:"video_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type LearningEvent struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"-"`
	Slug            *string   `db:"slug" json:"slug"`
	VideoID         *string   `db:"video_id" json:"video_id"`
	EventType       string    `db:"event_type" json:"event_type"`
	OccurredAt      time.Time `db:"occurred_at" json:"occurred_at"`
	DurationSeconds *int      `db:"duration_seconds" json:"duration_seconds"`
}

// Content payloads stored as JSON text

type QuizQuestion struct {
	Question    string   `json:"question" yaml:"question"`
	Choices     []string `json:"choices" yaml:"choices"`
	Answer      string   `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation"`
}

type QuizPayload struct {
	LeadIntro *string        `json:"lead_intro,omitempty"`
	Quiz      []QuizQuestion `json:"quiz"`
}

type VocabItem struct {
	Word          string `json:"word" yaml:"word"`
	Pronunciation string `json:"pronunciation,omitempty" yaml:"pronunciation"`
	Definition    string `json:"definition,omitempty" yaml:"definition"`
	Example       string `json:"example,omitempty" yaml:"example"`
}

type VocabPayload struct {
	Vocabulary []VocabItem `json:"vocabulary"`
}

// Request types

type StartAttemptRequest struct {
	Slug           string  `json:"slug"`
	VideoID        *string `json:"video_id"`
	TotalQuestions *int    `json:"total_questions"`
}

type CompleteAttemptRequest struct {
	Slug      string   `json:"slug"`
	AttemptID string   `json:"attempt_id"`
	Answers   []string `json:"answers"`
}

type FavoriteRequest struct {
	Word          string  `json:"word"`
	Pronunciation *string `json:"pronunciation"`
	Definition    *string `json:"definition"`
	Example       *string `json:"example"`
	Slug          *string `json:"slug"`
	VideoID       *string `json:"video_id"`
}

type LearningEventRequest struct {
	Slug            *string `json:"slug"`
	VideoID         *string `json:"video_id"`
	EventType       string  `json:"event_type"`
	DurationSeconds *int    `json:"duration_seconds"`
}

// Response types

type HomeResponse struct {
	ChannelOptions  []string  `json:"channel_options"`
	CategoryOptions []string  `json:"category_options"`
	LevelOptions    []string  `json:"level_options"`
	Rows            []Article `json:"rows"`
	FetchError      *string   `json:"fetch_error"`
}

type ArticleResponse struct {
	Article       Article        `json:"article"`
	LeadIntro     *string        `json:"lead_intro"`
	VideoEmbedURL *string        `json:"video_embed_url"`
	Quiz          []QuizQuestion `json:"quiz"`
	Vocabulary    []VocabItem    `json:"vocabulary"`
	FavoriteWords []string       `json:"favorite_words"`
}

type StartAttemptResponse struct {
	AttemptID string    `json:"attempt_id"`
	StartedAt time.Time `json:"started_at"`
}

type QuestionResult struct {
	Index       int    `json:"index"`
	Correct     bool   `json:"correct"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

type CompleteAttemptResponse struct {
	AttemptID       string           `json:"attempt_id"`
	TotalQuestions  int              `json:"total_questions"`
	CorrectCount    int              `json:"correct_count"`
	ScorePercent    float64          `json:"score_percent"`
	DurationSeconds int              `json:"duration_seconds"`
	CompletedAt     time.Time        `json:"completed_at"`
	Results         []QuestionResult `json:"results"`
}

type FavoritesResponse struct {
	Favorites []FavoriteWord `json:"favorites"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
