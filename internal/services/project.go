package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/apierr"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*types.Project, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Project, error)
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, log *logger.Logger, projectRepo repos.ProjectRepo) ProjectService {
	return &projectService{
		db:          db,
		log:         log.With("service", "ProjectService"),
		projectRepo: projectRepo,
	}
}

func (ps *projectService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*types.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("missing_name", "project name is required")
	}
	project := &types.Project{
		ID:     uuid.New(),
		Name:   name,
		UserID: ownerID,
	}
	if _, err := ps.projectRepo.Create(ctx, nil, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (ps *projectService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Project, error) {
	projects, err := ps.projectRepo.GetByUserID(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
