package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsync/internal/models/request_models"
	"tripsync/internal/services"
	"tripsync/pkg/utils"
)

type KnowledgeController struct {
	knowledgeService services.KnowledgeServiceInterface
}

func NewKnowledgeController(knowledgeService services.KnowledgeServiceInterface) *KnowledgeController {
	return &KnowledgeController{knowledgeService: knowledgeService}
}

// QueryHandler serves POST /api/knowledge/query.
func (k *KnowledgeController) QueryHandler(c *gin.Context) {
	var req request_models.KnowledgeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK < 0 || req.TopK > 20 {
		utils.HandleServiceError(c, utils.ErrInvalidTopK)
		return
	}

	snippets := k.knowledgeService.SimilaritySearch(c.Request.Context(), req.Query, req.TopK)
	utils.RespondSuccess(c, snippets, "Knowledge retrieved successfully")
}
