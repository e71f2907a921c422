package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/bhanumaheshbs/ab-agent-backend/internal/http/handlers"
	httpMW "github.com/bhanumaheshbs/ab-agent-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler       *httpH.UserHandler
	ProjectHandler    *httpH.ProjectHandler
	ExperimentHandler *httpH.ExperimentHandler
	AdminHandler      *httpH.AdminHandler
	AgentHandler      *httpH.AgentHandler
	HealthHandler     *httpH.HealthHandler

	// AgentScriptPath points at the agent.js snippet on disk. Empty disables
	// the /agent.js route.
	AgentScriptPath string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Embeddable snippet. Served uncached so experiment owners always embed
	// the latest build.
	if cfg.AgentScriptPath != "" {
		scriptPath := cfg.AgentScriptPath
		r.GET("/agent.js", func(c *gin.Context) {
			c.Header("Cache-Control", "no-store")
			c.Header("Content-Type", "application/javascript; charset=utf-8")
			c.File(scriptPath)
		})
	}

	// Agent endpoints (public, called from visitor browsers)
	if cfg.AgentHandler != nil {
		agent := r.Group("/api/experiments")
		agent.GET("/:id/decision", cfg.AgentHandler.GetDecision)
		agent.POST("/:id/feedback", cfg.AgentHandler.PostFeedback)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/users/signup", cfg.AuthHandler.Signup)
			api.POST("/users/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects", cfg.ProjectHandler.List)
		}

		// Experiments (dashboard)
		if cfg.ExperimentHandler != nil {
			protected.POST("/experiments", cfg.ExperimentHandler.Create)
			protected.GET("/experiments/:id", cfg.ExperimentHandler.Get)
			protected.PUT("/experiments/:id", cfg.ExperimentHandler.Update)
			protected.GET("/experiments/:id/stats", cfg.ExperimentHandler.GetStats)
			protected.GET("/experiments/project/:projectId", cfg.ExperimentHandler.ListByProject)
		}
	}

	// Admin
	if cfg.AdminHandler != nil && cfg.AuthMiddleware != nil {
		admin := api.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.GET("/projects", cfg.AdminHandler.ListProjects)
		admin.GET("/overview", cfg.AdminHandler.Overview)
	}

	return r
}
