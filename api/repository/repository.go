package repository

import (
	"context"
	"errors"

	"newsVoice/api/models"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrArticleNotFound = errors.New("article not found")
)

// DeleteAllResult reports what an atomic clear removed. AudioPaths lists
// artifact files that can be unlinked once the transaction has committed.
type DeleteAllResult struct {
	Tasks      int
	Articles   int
	AudioPaths []string
}

type Repository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, int, error)
	ListArticles(ctx context.Context, taskID string) ([]*models.Article, error)
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	BeginAudioStage(ctx context.Context, articleID string) error
	DeleteAll(ctx context.Context) (*DeleteAllResult, error)
}
