package service

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsVoice/api/dto"
	"newsVoice/api/kafka"
	"newsVoice/api/models"
	"newsVoice/api/repository"
	"newsVoice/api/validation"
	"newsVoice/internal/apperr"
)

// StatusCache is the read-optimized snapshot the polling clients hit.
type StatusCache interface {
	Get(ctx context.Context, taskID string) (models.TaskStatus, error)
	Set(ctx context.Context, taskID string, status models.TaskStatus) error
	Clear(ctx context.Context) error
}

// Markers is the per-(article, variant) in-flight guard.
type Markers interface {
	Acquire(ctx context.Context, articleID string, variant models.AudioVariant) (bool, error)
	Release(ctx context.Context, articleID string, variant models.AudioVariant) error
	Clear(ctx context.Context) error
}

type TaskService struct {
	repo     repository.Repository
	cache    StatusCache
	markers  Markers
	producer kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewTaskService(repo repository.Repository, cache StatusCache, markers Markers, producer kafka.Producer, topic string, logger *zap.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		cache:    cache,
		markers:  markers,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// CreateTask validates the submission, persists a pending task and
// schedules pipeline work. It never waits for the pipeline itself.
func (s *TaskService) CreateTask(ctx context.Context, traceID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	source, err := validation.ParseSource(req)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidInput, err.Error(), err)
	}

	task := &models.Task{
		TraceID: traceID,
		Source:  source,
		Status:  models.StatusPending,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to persist task", err)
	}

	s.cache.Set(ctx, task.ID, models.StatusPending)

	msg := &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  task.ID,
		TraceID: traceID,
		URL:     source.URL,
		Title:   source.Title,
		Content: source.Body,
	}
	if err := s.producer.SendStageMessage(ctx, s.topic, msg); err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to schedule task", err)
	}

	return s.toTaskResponse(task), nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*dto.TaskResponse, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, apperr.New(apperr.CodeNotFound, "task not found", err)
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "task not found", err)
		}
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to load task", err)
	}

	s.cache.Set(ctx, task.ID, task.Status)

	return s.toTaskResponse(task), nil
}

func (s *TaskService) ListTasks(ctx context.Context, skip, limit int) (*dto.TaskListResponse, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	tasks, total, err := s.repo.ListTasks(ctx, skip, limit)
	if err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to list tasks", err)
	}

	resp := &dto.TaskListResponse{
		Tasks:    make([]*dto.TaskResponse, 0, len(tasks)),
		Total:    total,
		Page:     skip/limit + 1,
		PageSize: limit,
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, s.toTaskResponse(task))
	}
	return resp, nil
}

func (s *TaskService) ListArticles(ctx context.Context, taskID string) (*dto.ArticleListResponse, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	articles, err := s.repo.ListArticles(ctx, taskID)
	if err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to list articles", err)
	}

	resp := &dto.ArticleListResponse{Articles: make([]*dto.ArticleResponse, 0, len(articles))}
	for _, article := range articles {
		resp.Articles = append(resp.Articles, toArticleResponse(article))
	}
	return resp, nil
}

func (s *TaskService) GetArticle(ctx context.Context, articleID string) (*dto.ArticleResponse, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return toArticleResponse(article), nil
}

// GetArticleModel exposes the raw record for artifact downloads.
func (s *TaskService) GetArticleModel(ctx context.Context, articleID string) (*models.Article, error) {
	return s.loadArticle(ctx, articleID)
}

func (s *TaskService) loadArticle(ctx context.Context, articleID string) (*models.Article, error) {
	if _, err := uuid.Parse(articleID); err != nil {
		return nil, apperr.New(apperr.CodeNotFound, "article not found", err)
	}

	article, err := s.repo.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "article not found", err)
		}
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to load article", err)
	}
	return article, nil
}

// GenerateAudio accepts an audio stage for one variant. A duplicate call
// for a variant already in flight is rejected, not queued; re-running a
// variant that previously completed replaces its artifact.
func (s *TaskService) GenerateAudio(ctx context.Context, traceID, articleID string, variant models.AudioVariant) (*dto.GenerateAudioResponse, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	switch article.Status {
	case models.StatusCompleted, models.StatusGenerating:
		// generating means the other variant is running; the marker below
		// decides whether this variant itself is free.
	default:
		return nil, apperr.New(apperr.CodePreconditionFailed, "article translation is not finished", nil)
	}

	switch variant {
	case models.VariantTranslated:
		if article.ContentCN == "" {
			return nil, apperr.New(apperr.CodePreconditionFailed, "translated content not available", nil)
		}
	case models.VariantOriginal:
		if article.Content == "" {
			return nil, apperr.New(apperr.CodePreconditionFailed, "original content not available", nil)
		}
	default:
		return nil, apperr.New(apperr.CodeInvalidInput, validation.ErrUnknownVariant.Error(), nil)
	}

	won, err := s.markers.Acquire(ctx, articleID, variant)
	if err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to acquire stage marker", err)
	}
	if !won {
		return nil, apperr.New(apperr.CodeAlreadyInProgress, "audio generation already in progress for this variant", nil)
	}

	if err := s.repo.BeginAudioStage(ctx, articleID); err != nil {
		s.markers.Release(ctx, articleID, variant)
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "article not found", err)
		}
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to start audio stage", err)
	}

	msg := &kafka.StageMessage{
		Type:      kafka.MessageTypeAudio,
		TaskID:    article.TaskID,
		ArticleID: articleID,
		Variant:   string(variant),
		TraceID:   traceID,
	}
	if err := s.producer.SendStageMessage(ctx, s.topic, msg); err != nil {
		s.markers.Release(ctx, articleID, variant)
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to schedule audio stage", err)
	}

	return &dto.GenerateAudioResponse{Message: "audio generation started"}, nil
}

// DeleteAllTasks clears every task, article and artifact. The store delete
// is transactional; artifact files are unlinked only after commit.
func (s *TaskService) DeleteAllTasks(ctx context.Context) (*dto.DeleteAllResponse, error) {
	result, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, apperr.New(apperr.CodeStorageFailure, "failed to delete tasks", err)
	}

	for _, path := range result.AudioPaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove audio artifact",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	s.cache.Clear(ctx)
	s.markers.Clear(ctx)

	return &dto.DeleteAllResponse{
		Message:         "all tasks and articles deleted",
		DeletedTasks:    result.Tasks,
		DeletedArticles: result.Articles,
	}, nil
}

func (s *TaskService) toTaskResponse(task *models.Task) *dto.TaskResponse {
	url := task.Source.URL
	if task.Source.Kind == models.SourceRawText {
		url = "text_input"
	}

	resp := &dto.TaskResponse{
		ID:            task.ID,
		URL:           url,
		Status:        string(task.Status),
		ArticlesCount: task.ArticlesCount,
		ErrorMessage:  task.ErrorMessage,
		CreatedAt:     task.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if !task.UpdatedAt.IsZero() {
		updated := task.UpdatedAt.Format("2006-01-02T15:04:05Z")
		resp.UpdatedAt = &updated
	}
	return resp
}

func toArticleResponse(article *models.Article) *dto.ArticleResponse {
	resp := &dto.ArticleResponse{
		ID:                  article.ID,
		TaskID:              article.TaskID,
		Title:               article.Title,
		TitleCN:             article.TitleCN,
		Content:             article.Content,
		ContentCN:           article.ContentCN,
		SourceURL:           article.SourceURL,
		Author:              article.Author,
		AudioPath:           article.AudioPath,
		AudioPathOriginal:   article.AudioPathOriginal,
		Status:              string(article.Status),
		ErrorMessage:        article.ErrorMessage,
		TranslationProgress: article.TranslationProgress,
		CreatedAt:           article.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if article.PublishTime != nil {
		published := article.PublishTime.Format("2006-01-02T15:04:05Z")
		resp.PublishTime = &published
	}
	return resp
}
