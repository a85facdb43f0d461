package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) UpdateTaskStatus(ctx context.Context, taskID, status, errMsg string) (bool, error) {
	query := `UPDATE tasks SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.Exec(ctx, query, status, errMsg, taskID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *PostgresRepo) SetTaskArticlesCount(ctx context.Context, taskID string, count int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET articles_count = $1, updated_at = NOW() WHERE id = $2`, count, taskID)
	return err
}

func (r *PostgresRepo) CreateArticle(ctx context.Context, article *Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}

	query := `
		INSERT INTO articles (id, task_id, title, content, source_url, author, publish_time,
			status, translation_progress, translation_started_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		article.ID,
		article.TaskID,
		article.Title,
		article.Content,
		article.SourceURL,
		article.Author,
		article.PublishTime,
		article.Status,
		article.TranslationProgress,
	)
	return err
}

func (r *PostgresRepo) GetArticle(ctx context.Context, id string) (*Article, error) {
	query := `
		SELECT id, task_id, title, COALESCE(title_cn, ''), content, COALESCE(content_cn, ''),
			source_url, COALESCE(author, ''), publish_time, COALESCE(audio_path, ''),
			COALESCE(audio_path_original, ''), status, translation_progress
		FROM articles
		WHERE id = $1
	`

	var article Article
	err := r.db.QueryRow(ctx, query, id).Scan(
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
		&article.TranslationProgress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

func (r *PostgresRepo) ListArticleStatuses(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT status FROM articles WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

// BeginArticleStage marks a new stage run: status moves, progress drops
// back to zero and the stage clock restarts.
func (r *PostgresRepo) BeginArticleStage(ctx context.Context, id, status string) (bool, error) {
	query := `
		UPDATE articles
		SET status = $1, translation_progress = 0,
		    translation_started_at = NOW(), translation_completed_at = NULL
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// SetArticleProgress never lowers a stored value; GREATEST keeps the
// polled sequence non-decreasing even if updates land out of order.
func (r *PostgresRepo) SetArticleProgress(ctx context.Context, id string, progress int) (bool, error) {
	query := `
		UPDATE articles
		SET translation_progress = GREATEST(translation_progress, $1)
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, progress, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *PostgresRepo) CompleteTranslation(ctx context.Context, id, titleCN, contentCN string) (bool, error) {
	query := `
		UPDATE articles
		SET title_cn = $1, content_cn = $2, status = $3,
		    translation_progress = 100, translation_completed_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, titleCN, contentCN, StatusCompleted, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *PostgresRepo) SetAudioPath(ctx context.Context, id, variant, path string) (bool, error) {
	column := "audio_path"
	if variant == VariantOriginal {
		column = "audio_path_original"
	}

	query := `
		UPDATE articles
		SET ` + column + ` = $1, status = $2,
		    translation_progress = 100, translation_completed_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, path, StatusCompleted, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *PostgresRepo) FailArticle(ctx context.Context, id, errMsg string) (bool, error) {
	query := `
		UPDATE articles
		SET status = $1, error_message = $2, translation_completed_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, StatusFailed, errMsg, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
