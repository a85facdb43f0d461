package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"newsVoice/worker/kafka"
	"newsVoice/worker/repository"
)

const (
	stageTranslation = "translation"

	maxErrorMessageLen = 500
)

// Config carries the tunables for stage execution.
type Config struct {
	MaxArticles       int
	TargetLanguage    string
	SourceLanguage    string
	IngestTimeout     time.Duration
	TranslateTimeout  time.Duration
	SynthesizeTimeout time.Duration
}

// Coordinator owns the task/article state machine. It consumes stage
// messages, drives the executors and commits results through the
// repository. Only the stage currently holding an article's in-flight
// marker mutates that article's progress and status fields.
type Coordinator struct {
	repo       repository.Repository
	cache      StatusCache
	markers    Markers
	ingestor   Ingestor
	translator Translator
	synth      Synthesizer
	audio      AudioStore
	cfg        Config
	logger     *zap.Logger
}

func NewCoordinator(
	repo repository.Repository,
	cache StatusCache,
	markers Markers,
	ingestor Ingestor,
	translator Translator,
	synth Synthesizer,
	audio AudioStore,
	cfg Config,
	logger *zap.Logger,
) *Coordinator {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 10
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "zh"
	}
	return &Coordinator{
		repo:       repo,
		cache:      cache,
		markers:    markers,
		ingestor:   ingestor,
		translator: translator,
		synth:      synth,
		audio:      audio,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle dispatches one stage message. Errors are terminal for the
// affected task/article and are persisted, never returned to the caller.
func (c *Coordinator) Handle(ctx context.Context, msg *kafka.StageMessage) error {
	switch msg.Type {
	case kafka.MessageTypeProcess:
		c.processTask(ctx, msg)
	case kafka.MessageTypeAudio:
		c.generateAudio(ctx, msg)
	default:
		c.logger.Warn("Unknown stage message type",
			zap.String("type", msg.Type),
			zap.String("task_id", msg.TaskID),
		)
	}
	return nil
}

func (c *Coordinator) processTask(ctx context.Context, msg *kafka.StageMessage) {
	if msg.URL != "" {
		c.processURLTask(ctx, msg)
		return
	}
	c.processTextTask(ctx, msg)
}

// processTextTask derives a single article straight from the submitted
// text; there is no crawling stage in this mode.
func (c *Coordinator) processTextTask(ctx context.Context, msg *kafka.StageMessage) {
	article := &repository.Article{
		TaskID:    msg.TaskID,
		Title:     msg.Title,
		Content:   msg.Content,
		SourceURL: "text_input",
		Status:    repository.StatusPending,
	}
	if err := c.repo.CreateArticle(ctx, article); err != nil {
		c.failTask(ctx, msg.TaskID, fmt.Sprintf("failed to store article: %v", err))
		return
	}

	if err := c.repo.SetTaskArticlesCount(ctx, msg.TaskID, 1); err != nil {
		c.logger.Error("Failed to set articles count", zap.String("task_id", msg.TaskID), zap.Error(err))
	}
	c.setTaskStatus(ctx, msg.TaskID, repository.StatusTranslating, "")

	c.translateArticle(ctx, article)
	c.recomputeTaskStatus(ctx, msg.TaskID)
}

func (c *Coordinator) processURLTask(ctx context.Context, msg *kafka.StageMessage) {
	if found := c.setTaskStatus(ctx, msg.TaskID, repository.StatusCrawling, ""); !found {
		return
	}

	ingestCtx, cancel := context.WithTimeout(ctx, c.cfg.IngestTimeout)
	raw, err := c.ingestor.Ingest(ingestCtx, msg.URL, c.cfg.MaxArticles)
	cancel()
	if err != nil {
		c.failTask(ctx, msg.TaskID, classify("ingestion", err, ingestCtx))
		return
	}
	if len(raw) == 0 {
		c.failTask(ctx, msg.TaskID, "ingestion produced no articles")
		return
	}

	articles := make([]*repository.Article, 0, len(raw))
	for _, item := range raw {
		article := &repository.Article{
			TaskID:      msg.TaskID,
			Title:       item.Title,
			Content:     item.Content,
			SourceURL:   item.URL,
			Author:      item.Author,
			PublishTime: item.PublishTime,
			Status:      repository.StatusPending,
		}
		if err := c.repo.CreateArticle(ctx, article); err != nil {
			c.failTask(ctx, msg.TaskID, fmt.Sprintf("failed to store article: %v", err))
			return
		}
		articles = append(articles, article)
	}

	if err := c.repo.SetTaskArticlesCount(ctx, msg.TaskID, len(articles)); err != nil {
		c.logger.Error("Failed to set articles count", zap.String("task_id", msg.TaskID), zap.Error(err))
	}
	c.setTaskStatus(ctx, msg.TaskID, repository.StatusTranslating, "")

	// Each article's translation runs as its own unit of work.
	var wg sync.WaitGroup
	for _, article := range articles {
		wg.Add(1)
		go func(a *repository.Article) {
			defer wg.Done()
			c.translateArticle(ctx, a)
			c.recomputeTaskStatus(ctx, msg.TaskID)
		}(article)
	}
	wg.Wait()
}

// translateArticle runs the translation stage for one article under the
// (article, translation) marker.
func (c *Coordinator) translateArticle(ctx context.Context, article *repository.Article) {
	won, err := c.markers.Acquire(ctx, article.ID, stageTranslation)
	if err != nil {
		c.logger.Error("Failed to acquire translation marker",
			zap.String("article_id", article.ID), zap.Error(err))
		return
	}
	if !won {
		c.logger.Warn("Translation already in flight, skipping",
			zap.String("article_id", article.ID))
		return
	}
	defer c.markers.Release(ctx, article.ID, stageTranslation)

	found, err := c.repo.BeginArticleStage(ctx, article.ID, repository.StatusTranslating)
	if err != nil {
		c.logger.Error("Failed to begin translation stage",
			zap.String("article_id", article.ID), zap.Error(err))
		return
	}
	if !found {
		// Article vanished (bulk clear); commit nothing.
		return
	}

	sink := c.progressSink(ctx, article.ID)

	stageCtx, cancel := context.WithTimeout(ctx, c.cfg.TranslateTimeout)
	defer cancel()

	titleCN, contentCN, err := c.translator.Translate(stageCtx, article.Title, article.Content, sink)
	if err != nil {
		c.failArticle(ctx, article.ID, classify("translation", err, stageCtx))
		return
	}

	if _, err := c.repo.CompleteTranslation(ctx, article.ID, titleCN, contentCN); err != nil {
		c.failArticle(ctx, article.ID, fmt.Sprintf("failed to persist translation: %v", err))
		return
	}

	c.logger.Info("Article translated",
		zap.String("article_id", article.ID),
		zap.Int("content_len", len(contentCN)),
	)
}

func (c *Coordinator) generateAudio(ctx context.Context, msg *kafka.StageMessage) {
	variant := msg.Variant
	if variant != repository.VariantOriginal {
		variant = repository.VariantTranslated
	}
	// The api side acquired the marker before scheduling us; release it
	// once this run is terminal either way.
	defer c.markers.Release(ctx, msg.ArticleID, variant)

	article, err := c.repo.GetArticle(ctx, msg.ArticleID)
	if err != nil {
		c.logger.Error("Failed to load article for audio stage",
			zap.String("article_id", msg.ArticleID), zap.Error(err))
		return
	}
	if article == nil {
		return
	}

	var text, lang string
	if variant == repository.VariantOriginal {
		text, lang = article.Content, c.cfg.SourceLanguage
	} else {
		text, lang = article.ContentCN, c.cfg.TargetLanguage
	}
	if text == "" {
		// Precondition was checked at accept time; the text can only be
		// gone if the row was cleared and recreated meanwhile.
		c.failArticle(ctx, article.ID, "audio source text not available")
		c.recomputeTaskStatus(ctx, article.TaskID)
		return
	}

	sink := c.progressSink(ctx, article.ID)

	stageCtx, cancel := context.WithTimeout(ctx, c.cfg.SynthesizeTimeout)
	defer cancel()

	data, err := c.synth.Synthesize(stageCtx, text, lang, sink)
	if err != nil {
		c.failArticle(ctx, article.ID, classify("audio synthesis", err, stageCtx))
		c.recomputeTaskStatus(ctx, article.TaskID)
		return
	}

	name := article.ID + ".mp3"
	if variant == repository.VariantOriginal {
		name = article.ID + "_original.mp3"
	}
	path, err := c.audio.Save(ctx, name, data)
	if err != nil {
		c.failArticle(ctx, article.ID, fmt.Sprintf("failed to store audio artifact: %v", err))
		c.recomputeTaskStatus(ctx, article.TaskID)
		return
	}

	if _, err := c.repo.SetAudioPath(ctx, article.ID, variant, path); err != nil {
		c.logger.Error("Failed to record audio path",
			zap.String("article_id", article.ID), zap.Error(err))
		return
	}

	c.recomputeTaskStatus(ctx, article.TaskID)

	c.logger.Info("Audio generated",
		zap.String("article_id", article.ID),
		zap.String("variant", variant),
		zap.String("path", path),
	)
}

// progressSink persists executor progress, clamped so a polling reader
// never observes a regression within one stage run.
func (c *Coordinator) progressSink(ctx context.Context, articleID string) ProgressFunc {
	var mu sync.Mutex
	last := 0
	return func(percent int) {
		if percent < 0 {
			return
		}
		if percent > 100 {
			percent = 100
		}

		mu.Lock()
		if percent <= last {
			mu.Unlock()
			return
		}
		last = percent
		mu.Unlock()

		if _, err := c.repo.SetArticleProgress(ctx, articleID, percent); err != nil {
			c.logger.Warn("Failed to persist progress",
				zap.String("article_id", articleID), zap.Error(err))
		}
	}
}

func (c *Coordinator) failArticle(ctx context.Context, articleID, message string) {
	found, err := c.repo.FailArticle(ctx, articleID, truncate(message))
	if err != nil {
		c.logger.Error("Failed to mark article failed",
			zap.String("article_id", articleID), zap.Error(err))
		return
	}
	if found {
		c.logger.Warn("Article stage failed",
			zap.String("article_id", articleID),
			zap.String("reason", message),
		)
	}
}

func (c *Coordinator) failTask(ctx context.Context, taskID, message string) {
	c.setTaskStatus(ctx, taskID, repository.StatusFailed, truncate(message))
	c.logger.Warn("Task failed",
		zap.String("task_id", taskID),
		zap.String("reason", message),
	)
}

func (c *Coordinator) setTaskStatus(ctx context.Context, taskID, status, errMsg string) bool {
	found, err := c.repo.UpdateTaskStatus(ctx, taskID, status, errMsg)
	if err != nil {
		c.logger.Error("Failed to update task status",
			zap.String("task_id", taskID), zap.Error(err))
		return false
	}
	if found {
		c.cache.Set(ctx, taskID, status)
	}
	return found
}

// recomputeTaskStatus derives the task aggregate: failed is sticky, and
// otherwise the task never looks further along than its slowest article.
func (c *Coordinator) recomputeTaskStatus(ctx context.Context, taskID string) {
	statuses, err := c.repo.ListArticleStatuses(ctx, taskID)
	if err != nil {
		c.logger.Error("Failed to list article statuses",
			zap.String("task_id", taskID), zap.Error(err))
		return
	}
	if len(statuses) == 0 {
		return
	}

	agg := AggregateStatus(statuses)
	errMsg := ""
	if agg == repository.StatusFailed {
		errMsg = "one or more articles failed"
	}
	c.setTaskStatus(ctx, taskID, agg, errMsg)
}

// AggregateStatus folds article statuses into the owning task's status.
func AggregateStatus(statuses []string) string {
	rank := map[string]int{
		repository.StatusPending:     0,
		repository.StatusTranslating: 1,
		repository.StatusGenerating:  2,
		repository.StatusCompleted:   3,
	}

	lowest := rank[repository.StatusCompleted]
	for _, status := range statuses {
		if status == repository.StatusFailed {
			return repository.StatusFailed
		}
		if r, ok := rank[status]; ok && r < lowest {
			lowest = r
		}
	}

	switch lowest {
	case 0, 1:
		return repository.StatusTranslating
	case 2:
		return repository.StatusGenerating
	default:
		return repository.StatusCompleted
	}
}

// classify maps an executor error to the persisted failure kind.
func classify(stage string, err error, stageCtx context.Context) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out", stage)
	}
	return fmt.Sprintf("%s failed: %v", stage, err)
}

func truncate(message string) string {
	if len(message) > maxErrorMessageLen {
		return message[:maxErrorMessageLen]
	}
	return message
}
