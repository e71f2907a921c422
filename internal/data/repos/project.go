package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
	// ListAllWithOwner preloads the owning user for the admin listing.
	ListAllWithOwner(ctx context.Context, tx *gorm.DB) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Project
	err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if err := t.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListAllWithOwner(ctx context.Context, tx *gorm.DB) ([]*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if err := t.WithContext(ctx).Preload("User").Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
