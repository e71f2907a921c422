package db

import (
	"gorm.io/gorm"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Project{},
		&types.Experiment{},
		&types.DailyStat{},
	)
}
