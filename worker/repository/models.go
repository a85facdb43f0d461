package repository

import "time"

const (
	StatusPending     = "pending"
	StatusCrawling    = "crawling"
	StatusTranslating = "translating"
	StatusGenerating  = "generating"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

const (
	VariantOriginal   = "original"
	VariantTranslated = "translated"
)

type Article struct {
	ID                  string
	TaskID              string
	Title               string
	TitleCN             string
	Content             string
	ContentCN           string
	SourceURL           string
	Author              string
	PublishTime         *time.Time
	AudioPath           string
	AudioPathOriginal   string
	Status              string
	TranslationProgress int
}
