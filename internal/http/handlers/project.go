package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/http/response"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/ctxutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
	}
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), rd.UserID, req.Name)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	projects, err := h.projectService.ListForOwner(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("list projects failed", "error", err, "user_id", rd.UserID)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, projects)
}
