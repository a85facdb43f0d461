package pipeline

import (
	"context"
	"time"
)

// ProgressFunc receives fractional stage progress in percent. Executors
// only ever report progress, never partial output; artifacts stay
// complete-or-absent from a reader's point of view.
type ProgressFunc func(percent int)

// IngestedArticle is the raw material an Ingestor extracts per article.
type IngestedArticle struct {
	Title       string
	Content     string
	URL         string
	Author      string
	PublishTime *time.Time
}

// Ingestor turns a submitted URL into up to max raw articles.
type Ingestor interface {
	Ingest(ctx context.Context, url string, max int) ([]IngestedArticle, error)
}

// Translator produces a complete translation of title and body,
// reporting percent done along the way.
type Translator interface {
	Translate(ctx context.Context, title, body string, progress ProgressFunc) (titleCN, bodyCN string, err error)
}

// Synthesizer renders text to audio bytes for the given language.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error)
}

// AudioStore persists a finished audio artifact. Save must be atomic:
// the previous artifact under the same name stays readable until the
// replacement is fully written.
type AudioStore interface {
	Save(ctx context.Context, name string, data []byte) (path string, err error)
}

// StatusCache pushes task status snapshots for the polling read path.
type StatusCache interface {
	Set(ctx context.Context, taskID string, status string) error
}

// Markers is the per-(article, stage) exclusion the coordinator holds
// while a stage unit is in flight.
type Markers interface {
	Acquire(ctx context.Context, articleID, stage string) (bool, error)
	Release(ctx context.Context, articleID, stage string) error
}
