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

type ExperimentHandler struct {
	log               *logger.Logger
	experimentService services.ExperimentService
}

func NewExperimentHandler(log *logger.Logger, experimentService services.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		log:               log.With("handler", "ExperimentHandler"),
		experimentService: experimentService,
	}
}

type createExperimentRequest struct {
	Name       string   `json:"name"`
	ProjectID  string   `json:"projectId"`
	Variations []string `json:"variations"`
}

// variationPayload keeps the wire shape the embedded dashboard already sends,
// where existing variations carry their id under "_id".
type variationPayload struct {
	ID   *uuid.UUID `json:"_id"`
	Name string     `json:"name"`
}

type updateExperimentRequest struct {
	Name       *string            `json:"name"`
	Variations []variationPayload `json:"variations"`
}

func (h *ExperimentHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	experiment, err := h.experimentService.Create(c.Request.Context(), rd.UserID, services.CreateExperimentInput{
		Name:           req.Name,
		ProjectID:      projectID,
		VariationNames: req.Variations,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, experiment)
}

func (h *ExperimentHandler) Get(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	experimentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "experiment_not_found", nil)
		return
	}
	experiment, err := h.experimentService.GetForOwner(c.Request.Context(), rd.UserID, experimentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, experiment)
}

func (h *ExperimentHandler) ListByProject(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "project_not_found", nil)
		return
	}
	experiments, err := h.experimentService.ListByProject(c.Request.Context(), rd.UserID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, experiments)
}

func (h *ExperimentHandler) GetStats(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	experimentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "experiment_not_found", nil)
		return
	}
	stats, err := h.experimentService.GetStats(c.Request.Context(), rd.UserID, experimentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (h *ExperimentHandler) Update(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	experimentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "experiment_not_found", nil)
		return
	}
	var req updateExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	input := services.UpdateExperimentInput{Name: req.Name}
	if req.Variations != nil {
		input.Variations = make([]services.VariationInput, 0, len(req.Variations))
		for _, v := range req.Variations {
			input.Variations = append(input.Variations, services.VariationInput{ID: v.ID, Name: v.Name})
		}
	}

	experiment, err := h.experimentService.Update(c.Request.Context(), rd.UserID, experimentID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Experiment updated", "experiment": experiment})
}
