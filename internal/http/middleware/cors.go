package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/envutil"
)

// CORS dispatches per path: the agent surface (the snippet and the public
// decision/feedback endpoints) accepts any origin because it is called from
// arbitrary customer sites, everything else is restricted to the dashboard
// origins. It must be installed on the engine, not a group, so preflight
// OPTIONS requests are answered even though no OPTIONS route is registered.
func CORS() gin.HandlerFunc {
	dashboard := dashboardCORS()
	agent := agentCORS()
	return func(c *gin.Context) {
		if isAgentPath(c.Request.URL.Path) {
			agent(c)
			return
		}
		dashboard(c)
	}
}

func isAgentPath(path string) bool {
	if path == "/agent.js" {
		return true
	}
	return strings.HasPrefix(path, "/api/experiments/") &&
		(strings.HasSuffix(path, "/decision") || strings.HasSuffix(path, "/feedback"))
}

func dashboardCORS() gin.HandlerFunc {
	defaults := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	origins := defaults
	if extra := envutil.Str("CORS_ALLOWED_ORIGINS", ""); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}

func agentCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
	})
}
