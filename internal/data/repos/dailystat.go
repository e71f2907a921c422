package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type DailyStatRepo interface {
	// IncrementUpsert inserts row, or adds row's trials/successes onto the
	// existing (experiment, variation, date) row. The deltas ride in on the
	// row itself, so callers pass Trials: 1 or Successes: 1. The conflict
	// target is the composite unique index, which makes concurrent calls for
	// the same bucket additive rather than lost.
	IncrementUpsert(ctx context.Context, tx *gorm.DB, row *types.DailyStat) error
	GetByExperimentID(ctx context.Context, tx *gorm.DB, experimentID uuid.UUID) ([]*types.DailyStat, error)
	DeleteByExperimentAndVariationIDs(ctx context.Context, tx *gorm.DB, experimentID uuid.UUID, variationIDs []uuid.UUID) (int64, error)
}

type dailyStatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyStatRepo(db *gorm.DB, baseLog *logger.Logger) DailyStatRepo {
	return &dailyStatRepo{db: db, log: baseLog.With("repo", "DailyStatRepo")}
}

func (r *dailyStatRepo) IncrementUpsert(ctx context.Context, tx *gorm.DB, row *types.DailyStat) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ExperimentID == uuid.Nil || row.VariationID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.UpdatedAt = now

	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "experiment_id"},
				{Name: "variation_id"},
				{Name: "date"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"trials":     gorm.Expr("daily_stat.trials + excluded.trials"),
				"successes":  gorm.Expr("daily_stat.successes + excluded.successes"),
				"updated_at": now,
			}),
		}).
		Create(row).Error
}

func (r *dailyStatRepo) GetByExperimentID(ctx context.Context, tx *gorm.DB, experimentID uuid.UUID) ([]*types.DailyStat, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.DailyStat
	if err := t.WithContext(ctx).
		Where("experiment_id = ?", experimentID).
		Order("date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dailyStatRepo) DeleteByExperimentAndVariationIDs(ctx context.Context, tx *gorm.DB, experimentID uuid.UUID, variationIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if experimentID == uuid.Nil || len(variationIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Where("experiment_id = ? AND variation_id IN ?", experimentID, variationIDs).
		Delete(&types.DailyStat{})
	return res.RowsAffected, res.Error
}
