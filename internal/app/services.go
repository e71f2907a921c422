package app

import (
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/clockutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Project    services.ProjectService
	Experiment services.ExperimentService
	Decision   services.DecisionService
	Admin      services.AdminService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:       services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:       services.NewUserService(db, log, r.User),
		Project:    services.NewProjectService(db, log, r.Project),
		Experiment: services.NewExperimentService(db, log, r.Experiment, r.Project, r.DailyStat),
		Decision:   services.NewDecisionService(db, log, r.Experiment, r.DailyStat, c.DecisionCache, c.Classifier, clockutil.System()),
		Admin:      services.NewAdminService(db, log, r.User, r.Project),
	}
}
