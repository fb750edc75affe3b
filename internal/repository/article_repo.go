package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/model"
)

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

const articleColumns = `id, slug, title, description, content, cover_url, tags,
	published, COALESCE(published_at, 'epoch'::timestamptz), created_at, updated_at`

func scanArticle(row pgx.Row) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Content, &a.CoverURL,
		&a.Tags, &a.Published, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (model.Article, error) {
	a, err := scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, model.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (model.Article, error) {
	a, err := scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, strings.TrimSpace(slug)))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, model.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article slug exists: %w", err)
	}
	return exists, nil
}

func (r *ArticleRepository) List(ctx context.Context, filter model.ArticleFilter) ([]model.Article, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if filter.PublishedOnly {
		where = append(where, "published")
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE `+clause+
			fmt.Sprintf(` ORDER BY GREATEST(published_at, created_at) DESC LIMIT $%d OFFSET $%d`,
				len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}

func (r *ArticleRepository) Create(ctx context.Context, a model.Article) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO articles (id, slug, title, description, content, cover_url, tags,
		                       published, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, 'epoch'::timestamptz), $10, $11)`,
		a.ID, a.Slug, a.Title, a.Description, a.Content, a.CoverURL, a.Tags,
		a.Published, a.PublishedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Update(ctx context.Context, a model.Article) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles
		 SET slug = $2, title = $3, description = $4, content = $5, cover_url = $6,
		     tags = $7, published = $8, published_at = NULLIF($9, 'epoch'::timestamptz), updated_at = $10
		 WHERE id = $1`,
		a.ID, a.Slug, a.Title, a.Description, a.Content, a.CoverURL,
		a.Tags, a.Published, a.PublishedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}
