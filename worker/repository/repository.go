package repository

import (
	"context"
	"errors"
)

var ErrTaskNotFound = errors.New("task not found")

// Repository is the worker's view of the store. Mutations against rows
// that no longer exist report found=false so an in-flight stage racing a
// bulk clear commits nothing instead of resurrecting the entity.
type Repository interface {
	UpdateTaskStatus(ctx context.Context, taskID, status, errMsg string) (found bool, err error)
	SetTaskArticlesCount(ctx context.Context, taskID string, count int) error

	CreateArticle(ctx context.Context, article *Article) error
	GetArticle(ctx context.Context, id string) (*Article, error)
	ListArticleStatuses(ctx context.Context, taskID string) ([]string, error)

	BeginArticleStage(ctx context.Context, id, status string) (found bool, err error)
	SetArticleProgress(ctx context.Context, id string, progress int) (found bool, err error)
	CompleteTranslation(ctx context.Context, id, titleCN, contentCN string) (found bool, err error)
	SetAudioPath(ctx context.Context, id, variant, path string) (found bool, err error)
	FailArticle(ctx context.Context, id, errMsg string) (found bool, err error)
}
