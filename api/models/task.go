package models

import (
	"time"
)

type TaskStatus string

const (
	StatusPending     TaskStatus = "pending"
	StatusCrawling    TaskStatus = "crawling"
	StatusTranslating TaskStatus = "translating"
	StatusGenerating  TaskStatus = "generating"
	StatusCompleted   TaskStatus = "completed"
	StatusFailed      TaskStatus = "failed"
)

type SourceKind string

const (
	SourceURL     SourceKind = "url"
	SourceRawText SourceKind = "raw_text"
)

// TaskSource is the tagged submission union: either a URL to crawl or a
// raw title/body pair that skips ingestion entirely.
type TaskSource struct {
	Kind  SourceKind
	URL   string
	Title string
	Body  string
}

type Task struct {
	ID            string
	TraceID       string
	Source        TaskSource
	Status        TaskStatus
	ArticlesCount int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type AudioVariant string

const (
	VariantOriginal   AudioVariant = "original"
	VariantTranslated AudioVariant = "translated"
)

type Article struct {
	ID                     string
	TaskID                 string
	Title                  string
	TitleCN                string
	Content                string
	ContentCN              string
	SourceURL              string
	Author                 string
	PublishTime            *time.Time
	AudioPath              string
	AudioPathOriginal      string
	Status                 TaskStatus
	ErrorMessage           string
	TranslationProgress    int
	TranslationStartedAt   *time.Time
	TranslationCompletedAt *time.Time
	CreatedAt              time.Time
}
