package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/model"
	"portfolio-api/internal/util"
	"portfolio-api/pkg/apierror"
)

type ArticleStore interface {
	FindByID(ctx context.Context, id string) (model.Article, error)
	FindBySlug(ctx context.Context, slug string) (model.Article, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter model.ArticleFilter) ([]model.Article, int, error)
	Create(ctx context.Context, a model.Article) error
	Update(ctx context.Context, a model.Article) error
	Delete(ctx context.Context, id string) error
}

type ArticleService struct {
	store ArticleStore
}

func NewArticleService(store ArticleStore) *ArticleService {
	return &ArticleService{store: store}
}

func (s *ArticleService) List(ctx context.Context, filter model.ArticleFilter) ([]model.Article, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.store.List(ctx, filter)
}

// GetPublishedBySlug serves the public article page. Drafts are
// indistinguishable from missing articles to anonymous readers.
func (s *ArticleService) GetPublishedBySlug(ctx context.Context, slug string) (model.Article, error) {
	article, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return model.Article{}, err
	}
	if !article.Published {
		return model.Article{}, model.ErrArticleNotFound
	}
	return article, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id string) (model.Article, error) {
	return s.store.FindByID(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, req model.ArticleRequest) (model.Article, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Article{}, apierror.BadRequest("Title is required")
	}

	slug, err := util.Slugify(req.Title)
	if err != nil {
		return model.Article{}, err
	}

	taken, err := s.store.ExistsBySlug(ctx, slug)
	if err != nil {
		return model.Article{}, err
	}
	if taken {
		return model.Article{}, model.ErrSlugTaken
	}

	now := time.Now().UTC()
	article := model.Article{
		ID:          uuid.NewString(),
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		CoverURL:    strings.TrimSpace(req.CoverURL),
		Tags:        normalizeTags(req.Tags),
		Published:   req.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Published {
		article.PublishedAt = now
	}

	if err := s.store.Create(ctx, article); err != nil {
		return model.Article{}, err
	}
	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, id string, req model.ArticleRequest) (model.Article, error) {
	article, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Article{}, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return model.Article{}, apierror.BadRequest("Title is required")
	}

	slug, err := util.Slugify(req.Title)
	if err != nil {
		return model.Article{}, err
	}
	if slug != article.Slug {
		taken, err := s.store.ExistsBySlug(ctx, slug)
		if err != nil {
			return model.Article{}, err
		}
		if taken {
			return model.Article{}, model.ErrSlugTaken
		}
	}

	now := time.Now().UTC()
	wasPublished := article.Published

	article.Slug = slug
	article.Title = strings.TrimSpace(req.Title)
	article.Description = strings.TrimSpace(req.Description)
	article.Content = req.Content
	article.CoverURL = strings.TrimSpace(req.CoverURL)
	article.Tags = normalizeTags(req.Tags)
	article.Published = req.Published
	article.UpdatedAt = now
	if req.Published && !wasPublished {
		article.PublishedAt = now
	}

	if err := s.store.Update(ctx, article); err != nil {
		return model.Article{}, err
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		cleaned := strings.ToLower(strings.TrimSpace(tag))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
