package store

import (
	"database/sql"
	"time"
)

// Draft is a row in the drafts table. Tags and QuizQuestions hold JSON
// payloads; the service layer owns their typed form.
type Draft struct {
	ID              int64
	UserID          int64
	Title           string
	ContentHtml     string
	ContentFormat   string
	CoverImageUrl   string
	Tags            string
	CustomAuthor    sql.NullString
	QuizQuestions   string
	Status          string
	RejectionReason sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Article is a row in the articles table. Its ID equals the ID of the
// draft it was approved from.
type Article struct {
	ID            int64
	Slug          string
	AuthorID      int64
	Title         string
	ContentHtml   string
	Excerpt       string
	CoverImageUrl string
	Tags          string
	CustomAuthor  sql.NullString
	Status        string
	Likes         int64
	Featured      bool
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Quiz is a row in the quizzes table; at most one per article.
type Quiz struct {
	ID        int64
	ArticleID int64
	Questions string
	CreatedAt time.Time
}

// QuizAttempt is a row in the quiz_attempts table. The (QuizID, UserID)
// pair is unique: a user gets exactly one attempt per quiz.
type QuizAttempt struct {
	ID             string
	QuizID         int64
	UserID         int64
	Score          int64
	TotalQuestions int64
	TimeSpent      int64
	CompletedAt    time.Time
}

// Like is a row in the likes table.
type Like struct {
	ID        int64
	ArticleID int64
	UserID    int64
	CreatedAt time.Time
}

// Comment is a row in the comments table.
type Comment struct {
	ID        int64
	ArticleID int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// Notification is a row in the notifications table.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	Read      bool
	ActionUrl string
	CreatedAt time.Time
}

// User is a row in the users table.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         string
	AvatarUrl    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a row in the events audit table.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IpAddress string
	CreatedAt time.Time
}
