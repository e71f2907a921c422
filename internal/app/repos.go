package app

import (
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type Repos struct {
	User       repos.UserRepo
	Project    repos.ProjectRepo
	Experiment repos.ExperimentRepo
	DailyStat  repos.DailyStatRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Project:    repos.NewProjectRepo(db, log),
		Experiment: repos.NewExperimentRepo(db, log),
		DailyStat:  repos.NewDailyStatRepo(db, log),
	}
}
