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

type ProjectStore interface {
	FindByID(ctx context.Context, id string) (model.Project, error)
	FindBySlug(ctx context.Context, slug string) (model.Project, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, p model.Project) error
	Update(ctx context.Context, p model.Project) error
	Delete(ctx context.Context, id string) error
}

type ProjectService struct {
	store ProjectStore
}

func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.store.List(ctx)
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (model.Project, error) {
	return s.store.FindBySlug(ctx, slug)
}

func (s *ProjectService) Create(ctx context.Context, req model.ProjectRequest) (model.Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.Project{}, apierror.BadRequest("Name is required")
	}

	slug, err := util.Slugify(req.Name)
	if err != nil {
		return model.Project{}, err
	}

	taken, err := s.store.ExistsBySlug(ctx, slug)
	if err != nil {
		return model.Project{}, err
	}
	if taken {
		return model.Project{}, model.ErrSlugTaken
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Tech:        normalizeTags(req.Tech),
		RepoURL:     strings.TrimSpace(req.RepoURL),
		LiveURL:     strings.TrimSpace(req.LiveURL),
		CoverURL:    strings.TrimSpace(req.CoverURL),
		Featured:    req.Featured,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, project); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, req model.ProjectRequest) (model.Project, error) {
	project, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return model.Project{}, apierror.BadRequest("Name is required")
	}

	slug, err := util.Slugify(req.Name)
	if err != nil {
		return model.Project{}, err
	}
	if slug != project.Slug {
		taken, err := s.store.ExistsBySlug(ctx, slug)
		if err != nil {
			return model.Project{}, err
		}
		if taken {
			return model.Project{}, model.ErrSlugTaken
		}
	}

	project.Slug = slug
	project.Name = strings.TrimSpace(req.Name)
	project.Description = strings.TrimSpace(req.Description)
	project.Tech = normalizeTags(req.Tech)
	project.RepoURL = strings.TrimSpace(req.RepoURL)
	project.LiveURL = strings.TrimSpace(req.LiveURL)
	project.CoverURL = strings.TrimSpace(req.CoverURL)
	project.Featured = req.Featured
	project.SortOrder = req.SortOrder
	project.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, project); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
