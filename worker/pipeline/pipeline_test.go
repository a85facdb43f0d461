package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"newsVoice/worker/kafka"
	"newsVoice/worker/repository"
)

type taskRow struct {
	status        string
	errorMessage  string
	articlesCount int
}

type fakeRepo struct {
	mu          sync.Mutex
	tasks       map[string]*taskRow
	articles    map[string]*repository.Article
	progressLog map[string][]int
	errors      map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:       map[string]*taskRow{},
		articles:    map[string]*repository.Article{},
		progressLog: map[string][]int{},
	}
}

func (r *fakeRepo) addTask(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[id] = &taskRow{status: repository.StatusPending}
}

func (r *fakeRepo) task(id string) taskRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.tasks[id]
}

func (r *fakeRepo) article(id string) repository.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.articles[id]
}

func (r *fakeRepo) articleByTitle(title string) *repository.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.Title == title {
			copied := *a
			return &copied
		}
	}
	return nil
}

func (r *fakeRepo) UpdateTaskStatus(ctx context.Context, taskID, status, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return false, nil
	}
	task.status = status
	task.errorMessage = errMsg
	return true, nil
}

func (r *fakeRepo) SetTaskArticlesCount(ctx context.Context, taskID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[taskID]; ok {
		task.articlesCount = count
	}
	return nil
}

func (r *fakeRepo) CreateArticle(ctx context.Context, article *repository.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	copied := *article
	r.articles[article.ID] = &copied
	return nil
}

func (r *fakeRepo) GetArticle(ctx context.Context, id string) (*repository.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (r *fakeRepo) ListArticleStatuses(ctx context.Context, taskID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var statuses []string
	for _, article := range r.articles {
		if article.TaskID == taskID {
			statuses = append(statuses, article.Status)
		}
	}
	return statuses, nil
}

func (r *fakeRepo) BeginArticleStage(ctx context.Context, id, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	article.Status = status
	article.TranslationProgress = 0
	r.progressLog[id] = append(r.progressLog[id], 0)
	return true, nil
}

func (r *fakeRepo) SetArticleProgress(ctx context.Context, id string, progress int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	if progress > article.TranslationProgress {
		article.TranslationProgress = progress
	}
	r.progressLog[id] = append(r.progressLog[id], article.TranslationProgress)
	return true, nil
}

func (r *fakeRepo) CompleteTranslation(ctx context.Context, id, titleCN, contentCN string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	article.TitleCN = titleCN
	article.ContentCN = contentCN
	article.Status = repository.StatusCompleted
	article.TranslationProgress = 100
	return true, nil
}

func (r *fakeRepo) SetAudioPath(ctx context.Context, id, variant, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	if variant == repository.VariantOriginal {
		article.AudioPathOriginal = path
	} else {
		article.AudioPath = path
	}
	article.Status = repository.StatusCompleted
	article.TranslationProgress = 100
	return true, nil
}

func (r *fakeRepo) FailArticle(ctx context.Context, id, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	article.Status = repository.StatusFailed
	r.articleErrors(id, errMsg)
	return true, nil
}

// articleErrors stores the failure message alongside the article; the
// Article row keeps only what the worker repository persists.
func (r *fakeRepo) articleErrors(id, errMsg string) {
	if r.errors == nil {
		r.errors = map[string]string{}
	}
	r.errors[id] = errMsg
}

type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func (c *fakeCache) Set(ctx context.Context, taskID string, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statuses == nil {
		c.statuses = map[string]string{}
	}
	c.statuses[taskID] = status
	return nil
}

type fakeMarkers struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeMarkers() *fakeMarkers {
	return &fakeMarkers{held: map[string]bool{}}
}

func (m *fakeMarkers) Acquire(ctx context.Context, articleID, stage string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := articleID + ":" + stage
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *fakeMarkers) Release(ctx context.Context, articleID, stage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, articleID+":"+stage)
	return nil
}

func (m *fakeMarkers) isHeld(articleID, stage string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[articleID+":"+stage]
}

type stubIngestor struct {
	fn func(ctx context.Context, url string, max int) ([]IngestedArticle, error)
}

func (s *stubIngestor) Ingest(ctx context.Context, url string, max int) ([]IngestedArticle, error) {
	return s.fn(ctx, url, max)
}

type stubTranslator struct {
	fn func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error)
}

func (s *stubTranslator) Translate(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
	return s.fn(ctx, title, body, progress)
}

type stubSynthesizer struct {
	fn func(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error)
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error) {
	return s.fn(ctx, text, lang, progress)
}

type fakeAudioStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newFakeAudioStore() *fakeAudioStore {
	return &fakeAudioStore{saved: map[string][]byte{}}
}

func (s *fakeAudioStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = data
	return "/audio/" + name, nil
}

func newTestCoordinator(t *testing.T, repo *fakeRepo, markers *fakeMarkers, ingestor Ingestor, translator Translator, synth Synthesizer, audio AudioStore) (*Coordinator, *fakeCache) {
	t.Helper()
	cache := &fakeCache{}
	cfg := Config{
		MaxArticles:       10,
		TargetLanguage:    "zh",
		SourceLanguage:    "en",
		IngestTimeout:     time.Second,
		TranslateTimeout:  time.Second,
		SynthesizeTimeout: time.Second,
	}
	return NewCoordinator(repo, cache, markers, ingestor, translator, synth, audio, cfg, zaptest.NewLogger(t)), cache
}

func TestCoordinator_TextTask_Success(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			progress(50)
			progress(100)
			return "标题", "你好世界", nil
		},
	}

	coord, cache := newTestCoordinator(t, repo, newFakeMarkers(), nil, translator, nil, nil)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "hello world",
	})

	article := repo.articleByTitle("T")
	if article == nil {
		t.Fatal("Expected article to be created")
	}
	if article.Status != repository.StatusCompleted {
		t.Errorf("Expected article status completed, got %s", article.Status)
	}
	if article.ContentCN != "你好世界" {
		t.Errorf("Expected translated content, got %q", article.ContentCN)
	}
	if article.TranslationProgress != 100 {
		t.Errorf("Expected progress 100, got %d", article.TranslationProgress)
	}

	task := repo.task(taskID)
	if task.status != repository.StatusCompleted {
		t.Errorf("Expected task status completed, got %s", task.status)
	}
	if task.articlesCount != 1 {
		t.Errorf("Expected articles_count 1, got %d", task.articlesCount)
	}
	if cache.statuses[taskID] != repository.StatusCompleted {
		t.Errorf("Expected cached status completed, got %s", cache.statuses[taskID])
	}
}

func TestCoordinator_TextTask_NeverEntersCrawling(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	var seenStatuses []string
	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			seenStatuses = append(seenStatuses, repo.task(taskID).status)
			return "", "translated", nil
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), nil, translator, nil, nil)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "body",
	})

	for _, status := range seenStatuses {
		if status == repository.StatusCrawling {
			t.Error("Text-mode task must never pass through crawling")
		}
	}
	if len(seenStatuses) == 0 || seenStatuses[0] != repository.StatusTranslating {
		t.Errorf("Expected task translating while translation runs, got %v", seenStatuses)
	}
}

func TestCoordinator_URLTask_AggregateFollowsSlowestArticle(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	ingestor := &stubIngestor{
		fn: func(ctx context.Context, url string, max int) ([]IngestedArticle, error) {
			return []IngestedArticle{
				{Title: "fast-1", Content: "a", URL: "https://news.example/1"},
				{Title: "fast-2", Content: "b", URL: "https://news.example/2"},
				{Title: "slow", Content: "c", URL: "https://news.example/3"},
			}, nil
		},
	}

	fastDone := make(chan struct{}, 2)
	release := make(chan struct{})
	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			if title == "slow" {
				<-release
				return "", "slow-cn", nil
			}
			fastDone <- struct{}{}
			return "", title + "-cn", nil
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), ingestor, translator, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		coord.Handle(context.Background(), &kafka.StageMessage{
			Type:   kafka.MessageTypeProcess,
			TaskID: taskID,
			URL:    "https://news.example",
		})
	}()

	<-fastDone
	<-fastDone

	// Give the fast articles' terminal commits a moment to land, then
	// check the aggregate before releasing the slow one.
	deadline := time.After(2 * time.Second)
	for {
		if a1, a2 := repo.articleByTitle("fast-1"), repo.articleByTitle("fast-2"); a1 != nil && a2 != nil &&
			a1.Status == repository.StatusCompleted && a2.Status == repository.StatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Fast articles never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if status := repo.task(taskID).status; status != repository.StatusTranslating {
		t.Errorf("Expected task translating while one article is in flight, got %s", status)
	}

	close(release)
	<-done

	if status := repo.task(taskID).status; status != repository.StatusCompleted {
		t.Errorf("Expected task completed after all articles, got %s", status)
	}
	if count := repo.task(taskID).articlesCount; count != 3 {
		t.Errorf("Expected articles_count 3, got %d", count)
	}
}

func TestCoordinator_IngestionFailure_TaskFailed(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	ingestor := &stubIngestor{
		fn: func(ctx context.Context, url string, max int) ([]IngestedArticle, error) {
			return nil, errors.New("connection refused")
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), ingestor, nil, nil, nil)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:   kafka.MessageTypeProcess,
		TaskID: taskID,
		URL:    "https://news.example",
	})

	task := repo.task(taskID)
	if task.status != repository.StatusFailed {
		t.Fatalf("Expected task failed, got %s", task.status)
	}
	if !strings.Contains(task.errorMessage, "ingestion failed") {
		t.Errorf("Expected ingestion failure message, got %q", task.errorMessage)
	}
}

func TestCoordinator_TranslationFailure_ArticleAndTaskFailed(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			return "", "", errors.New("provider quota exceeded")
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), nil, translator, nil, nil)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "body",
	})

	article := repo.articleByTitle("T")
	if article.Status != repository.StatusFailed {
		t.Errorf("Expected article failed, got %s", article.Status)
	}
	if repo.task(taskID).status != repository.StatusFailed {
		t.Errorf("Expected task failed, got %s", repo.task(taskID).status)
	}
}

func TestCoordinator_TranslationTimeout(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			<-ctx.Done()
			return "", "", ctx.Err()
		},
	}

	cache := &fakeCache{}
	cfg := Config{TranslateTimeout: 20 * time.Millisecond, IngestTimeout: time.Second, SynthesizeTimeout: time.Second}
	coord := NewCoordinator(repo, cache, newFakeMarkers(), nil, translator, nil, nil, cfg, zaptest.NewLogger(t))

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "body",
	})

	article := repo.articleByTitle("T")
	if article.Status != repository.StatusFailed {
		t.Fatalf("Expected article failed, got %s", article.Status)
	}
	if !strings.Contains(repo.errors[article.ID], "timed out") {
		t.Errorf("Expected timeout classification, got %q", repo.errors[article.ID])
	}
}

func TestCoordinator_ProgressMonotonic(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			progress(30)
			progress(20)
			progress(60)
			progress(60)
			return "", "done", nil
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), nil, translator, nil, nil)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "body",
	})

	article := repo.articleByTitle("T")
	log := repo.progressLog[article.ID]

	last := -1
	for _, p := range log {
		if p < last {
			t.Fatalf("Progress regressed: %v", log)
		}
		last = p
	}
	// The stage reset plus only the increasing updates should be stored.
	want := []int{0, 30, 60}
	if len(log) != len(want) {
		t.Fatalf("Expected progress log %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("Expected progress log %v, got %v", want, log)
		}
	}
}

func TestCoordinator_GenerateAudio_TranslatedVariant(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	articleID := uuid.New().String()
	repo.CreateArticle(context.Background(), &repository.Article{
		ID:        articleID,
		TaskID:    taskID,
		Title:     "T",
		Content:   "hello",
		ContentCN: "你好",
		Status:    repository.StatusGenerating,
	})

	var gotLang string
	synth := &stubSynthesizer{
		fn: func(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error) {
			gotLang = lang
			progress(100)
			return []byte("mp3-bytes"), nil
		},
	}

	markers := newFakeMarkers()
	markers.Acquire(context.Background(), articleID, repository.VariantTranslated)

	audio := newFakeAudioStore()
	coord, _ := newTestCoordinator(t, repo, markers, nil, nil, synth, audio)

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:      kafka.MessageTypeAudio,
		TaskID:    taskID,
		ArticleID: articleID,
		Variant:   repository.VariantTranslated,
	})

	article := repo.article(articleID)
	if article.AudioPath != "/audio/"+articleID+".mp3" {
		t.Errorf("Expected audio path recorded, got %q", article.AudioPath)
	}
	if article.Status != repository.StatusCompleted {
		t.Errorf("Expected article completed, got %s", article.Status)
	}
	if gotLang != "zh" {
		t.Errorf("Expected translated variant synthesized in zh, got %s", gotLang)
	}
	if markers.isHeld(articleID, repository.VariantTranslated) {
		t.Error("Expected marker released after terminal stage")
	}
	if string(audio.saved[articleID+".mp3"]) != "mp3-bytes" {
		t.Error("Expected artifact bytes saved")
	}
}

func TestCoordinator_GenerateAudio_OriginalVariant(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	articleID := uuid.New().String()
	repo.CreateArticle(context.Background(), &repository.Article{
		ID:      articleID,
		TaskID:  taskID,
		Title:   "T",
		Content: "hello",
		Status:  repository.StatusGenerating,
	})

	var gotLang string
	synth := &stubSynthesizer{
		fn: func(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error) {
			gotLang = lang
			return []byte("mp3"), nil
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), nil, nil, synth, newFakeAudioStore())

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:      kafka.MessageTypeAudio,
		TaskID:    taskID,
		ArticleID: articleID,
		Variant:   repository.VariantOriginal,
	})

	article := repo.article(articleID)
	if article.AudioPathOriginal != "/audio/"+articleID+"_original.mp3" {
		t.Errorf("Expected original audio path recorded, got %q", article.AudioPathOriginal)
	}
	if gotLang != "en" {
		t.Errorf("Expected original variant synthesized in en, got %s", gotLang)
	}
}

func TestCoordinator_GenerateAudio_FailureMarksFailed(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New().String()
	repo.addTask(taskID)

	articleID := uuid.New().String()
	repo.CreateArticle(context.Background(), &repository.Article{
		ID:        articleID,
		TaskID:    taskID,
		ContentCN: "你好",
		Status:    repository.StatusGenerating,
	})

	synth := &stubSynthesizer{
		fn: func(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error) {
			return nil, errors.New("voice backend unavailable")
		},
	}

	coord, _ := newTestCoordinator(t, repo, newFakeMarkers(), nil, nil, synth, newFakeAudioStore())

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:      kafka.MessageTypeAudio,
		TaskID:    taskID,
		ArticleID: articleID,
		Variant:   repository.VariantTranslated,
	})

	if status := repo.article(articleID).Status; status != repository.StatusFailed {
		t.Errorf("Expected article failed after synthesis error, got %s", status)
	}
	if status := repo.task(taskID).status; status != repository.StatusFailed {
		t.Errorf("Expected task failed after synthesis error, got %s", status)
	}
}

func TestCoordinator_GenerateAudio_MissingArticleIsNoop(t *testing.T) {
	repo := newFakeRepo()
	markers := newFakeMarkers()
	articleID := uuid.New().String()
	markers.Acquire(context.Background(), articleID, repository.VariantTranslated)

	synth := &stubSynthesizer{
		fn: func(ctx context.Context, text, lang string, progress ProgressFunc) ([]byte, error) {
			t.Fatal("Synthesizer must not run for a missing article")
			return nil, nil
		},
	}

	coord, _ := newTestCoordinator(t, repo, markers, nil, nil, synth, newFakeAudioStore())

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:      kafka.MessageTypeAudio,
		ArticleID: articleID,
		Variant:   repository.VariantTranslated,
	})

	if markers.isHeld(articleID, repository.VariantTranslated) {
		t.Error("Expected marker released even when the article is gone")
	}
}

// vanishingRepo simulates a bulk clear landing between article creation
// and the translation stage claiming the row.
type vanishingRepo struct {
	*fakeRepo
}

func (r *vanishingRepo) BeginArticleStage(ctx context.Context, id, status string) (bool, error) {
	return false, nil
}

func TestCoordinator_TranslationAgainstDeletedArticleIsNoop(t *testing.T) {
	inner := newFakeRepo()
	taskID := uuid.New().String()
	inner.addTask(taskID)
	repo := &vanishingRepo{fakeRepo: inner}

	translator := &stubTranslator{
		fn: func(ctx context.Context, title, body string, progress ProgressFunc) (string, string, error) {
			t.Fatal("Translator must not run once the article is gone")
			return "", "", nil
		},
	}

	cache := &fakeCache{}
	cfg := Config{IngestTimeout: time.Second, TranslateTimeout: time.Second, SynthesizeTimeout: time.Second}
	coord := NewCoordinator(repo, cache, newFakeMarkers(), nil, translator, nil, nil, cfg, zaptest.NewLogger(t))

	coord.Handle(context.Background(), &kafka.StageMessage{
		Type:    kafka.MessageTypeProcess,
		TaskID:  taskID,
		Title:   "T",
		Content: "body",
	})

	article := repo.articleByTitle("T")
	if article == nil {
		t.Fatal("Article row should still exist in this simulation")
	}
	if article.Status != repository.StatusPending {
		t.Errorf("Expected no commits against the unclaimed article, got status %s", article.Status)
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all completed", []string{"completed", "completed"}, repository.StatusCompleted},
		{"failed is sticky", []string{"completed", "failed", "translating"}, repository.StatusFailed},
		{"translating dominates completed", []string{"completed", "completed", "translating"}, repository.StatusTranslating},
		{"pending counts as translating", []string{"pending", "completed"}, repository.StatusTranslating},
		{"generating below completed", []string{"generating", "completed"}, repository.StatusGenerating},
		{"translating below generating", []string{"translating", "generating"}, repository.StatusTranslating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateStatus(tt.statuses); got != tt.want {
				t.Errorf("AggregateStatus(%v) = %s, want %s", tt.statuses, got, tt.want)
			}
		})
	}
}
