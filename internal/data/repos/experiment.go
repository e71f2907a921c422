package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type ExperimentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) (*types.Experiment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Experiment, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Experiment, error)
	// Save writes the full row, variations included. The variation list is a
	// JSON column, so counter bumps and wholesale replacements go through the
	// same path.
	Save(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) error
}

type experimentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
	return &experimentRepo{db: db, log: baseLog.With("repo", "ExperimentRepo")}
}

func (r *experimentRepo) Create(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) (*types.Experiment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if experiment.ID == uuid.Nil {
		experiment.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(experiment).Error; err != nil {
		return nil, err
	}
	return experiment, nil
}

func (r *experimentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Experiment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Experiment
	err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *experimentRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Experiment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Experiment
	if err := t.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *experimentRepo) Save(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Save(experiment).Error
}
