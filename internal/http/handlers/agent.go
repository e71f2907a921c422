package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/http/response"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/services"
)

// AgentHandler serves the unauthenticated endpoints the embedded agent.js
// snippet talks to from visitor browsers.
type AgentHandler struct {
	log             *logger.Logger
	decisionService services.DecisionService
}

func NewAgentHandler(log *logger.Logger, decisionService services.DecisionService) *AgentHandler {
	return &AgentHandler{
		log:             log.With("handler", "AgentHandler"),
		decisionService: decisionService,
	}
}

func (h *AgentHandler) GetDecision(c *gin.Context) {
	experimentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "experiment_not_found", nil)
		return
	}
	forceFresh, _ := strconv.ParseBool(c.Query("forceFresh"))
	result, err := h.decisionService.Decide(c.Request.Context(), experimentID, forceFresh)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type feedbackRequest struct {
	VariationName string `json:"variationName"`
}

func (h *AgentHandler) PostFeedback(c *gin.Context) {
	experimentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "experiment_not_found", nil)
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.decisionService.RecordFeedback(c.Request.Context(), experimentID, req.VariationName); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Feedback recorded"})
}
