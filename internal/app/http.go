package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/bhanumaheshbs/ab-agent-backend/internal/http"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/http/handlers"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/http/middleware"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Project    *handlers.ProjectHandler
	Experiment *handlers.ExperimentHandler
	Admin      *handlers.AdminHandler
	Agent      *handlers.AgentHandler
	Health     *handlers.HealthHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       handlers.NewAuthHandler(services.Auth),
		User:       handlers.NewUserHandler(services.User),
		Project:    handlers.NewProjectHandler(log, services.Project),
		Experiment: handlers.NewExperimentHandler(log, services.Experiment),
		Admin:      handlers.NewAdminHandler(log, services.Admin),
		Agent:      handlers.NewAgentHandler(log, services.Decision),
		Health:     handlers.NewHealthHandler(),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return httpserver.NewRouter(httpserver.RouterConfig{
		AuthHandler:       h.Auth,
		AuthMiddleware:    mw.Auth,
		UserHandler:       h.User,
		ProjectHandler:    h.Project,
		ExperimentHandler: h.Experiment,
		AdminHandler:      h.Admin,
		AgentHandler:      h.Agent,
		HealthHandler:     h.Health,
		AgentScriptPath:   cfg.AgentScriptPath,
	})
}
