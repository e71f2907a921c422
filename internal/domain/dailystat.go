package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyStat is one (experiment, variation, UTC day) counter row. Rows are
// created lazily by the first event of a day via an atomic upsert and
// incremented in place afterwards. The composite unique index is what makes
// concurrent increments collapse onto a single row.
type DailyStat struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;column:user_id" json:"user_id"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;column:project_id" json:"project_id"`
	ExperimentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_stat_bucket;column:experiment_id" json:"experiment_id"`
	VariationID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_stat_bucket;column:variation_id" json:"variation_id"`
	VariationName string    `gorm:"not null;column:variation_name" json:"variation_name"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_daily_stat_bucket;column:date" json:"date"`
	Trials        int64     `gorm:"not null;default:0;column:trials" json:"trials"`
	Successes     int64     `gorm:"not null;default:0;column:successes" json:"successes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DailyStat) TableName() string { return "daily_stat" }
