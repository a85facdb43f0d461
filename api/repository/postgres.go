package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"newsVoice/api/database"
	"newsVoice/api/models"
)

type PostgresRepo struct {
	db *database.DB
}

func NewPostgresRepo(db *database.DB) Repository {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (trace_id, source_kind, url, status, articles_count, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		task.TraceID,
		task.Source.Kind,
		task.Source.URL,
		task.Status,
		task.ArticlesCount,
		task.ErrorMessage,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	return err
}

const taskColumns = `id, trace_id, source_kind, url, status, articles_count, error_message, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.TraceID,
		&task.Source.Kind,
		&task.Source.URL,
		&task.Status,
		&task.ArticlesCount,
		&task.ErrorMessage,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *PostgresRepo) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, int, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

const articleColumns = `id, task_id, title, COALESCE(title_cn, ''), content, COALESCE(content_cn, ''),
	source_url, COALESCE(author, ''), publish_time, COALESCE(audio_path, ''), COALESCE(audio_path_original, ''),
	status, COALESCE(error_message, ''), translation_progress, translation_started_at, translation_completed_at, created_at`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var article models.Article
	err := row.Scan(
		&article.ID,
		&article.TaskID,
		&article.Title,
		&article.TitleCN,
		&article.Content,
		&article.ContentCN,
		&article.SourceURL,
		&article.Author,
		&article.PublishTime,
		&article.AudioPath,
		&article.AudioPathOriginal,
		&article.Status,
		&article.ErrorMessage,
		&article.TranslationProgress,
		&article.TranslationStartedAt,
		&article.TranslationCompletedAt,
		&article.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *PostgresRepo) ListArticles(ctx context.Context, taskID string) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE task_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (r *PostgresRepo) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticle(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) BeginAudioStage(ctx context.Context, articleID string) error {
	query := `
		UPDATE articles
		SET status = $1, translation_progress = 0, translation_started_at = NOW(),
		    translation_completed_at = NULL
		WHERE id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query, models.StatusGenerating, articleID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// DeleteAll clears every task and article in one transaction so a
// concurrent reader sees either the full pre-delete set or nothing.
func (r *PostgresRepo) DeleteAll(ctx context.Context) (*DeleteAllResult, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res := &DeleteAllResult{}

	rows, err := tx.Query(ctx, `
		SELECT audio_path, audio_path_original FROM articles
		WHERE audio_path IS NOT NULL OR audio_path_original IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var translated, original *string
		if err := rows.Scan(&translated, &original); err != nil {
			rows.Close()
			return nil, err
		}
		if translated != nil && *translated != "" {
			res.AudioPaths = append(res.AudioPaths, *translated)
		}
		if original != nil && *original != "" {
			res.AudioPaths = append(res.AudioPaths, *original)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	articles, err := tx.Exec(ctx, `DELETE FROM articles`)
	if err != nil {
		return nil, err
	}
	tasks, err := tx.Exec(ctx, `DELETE FROM tasks`)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	res.Articles = int(articles.RowsAffected())
	res.Tasks = int(tasks.RowsAffected())
	return res, nil
}
