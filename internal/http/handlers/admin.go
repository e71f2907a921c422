package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/http/response"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/services"
)

type AdminHandler struct {
	log          *logger.Logger
	adminService services.AdminService
}

func NewAdminHandler(log *logger.Logger, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		log:          log.With("handler", "AdminHandler"),
		adminService: adminService,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error("admin list users failed", "error", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, users)
}

func (h *AdminHandler) ListProjects(c *gin.Context) {
	projects, err := h.adminService.ListProjects(c.Request.Context())
	if err != nil {
		h.log.Error("admin list projects failed", "error", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, projects)
}

func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.adminService.Overview(c.Request.Context())
	if err != nil {
		h.log.Error("admin overview failed", "error", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, overview)
}
