package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsync/internal/models/db_models"
	"tripsync/internal/models/request_models"
	"tripsync/internal/services"
	"tripsync/pkg/utils"
)

type RecommendationController struct {
	recommender    services.RecommenderServiceInterface
	catalogService services.CatalogServiceInterface
	explainService services.ExplainServiceInterface
}

func NewRecommendationController(
	recommender services.RecommenderServiceInterface,
	catalogService services.CatalogServiceInterface,
	explainService services.ExplainServiceInterface,
) *RecommendationController {
	return &RecommendationController{
		recommender:    recommender,
		catalogService: catalogService,
		explainService: explainService,
	}
}

// RankHandler serves POST /api/recommendations.
func (r *RecommendationController) RankHandler(c *gin.Context) {
	var req request_models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "destination is required")
		return
	}

	places := r.catalogService.LoadPlaces(c.Request.Context())
	userCtx := r.buildContext(&req, places)

	ranked := r.recommender.Rank(c.Request.Context(), req.Destination, req.Preferences, places, userCtx)
	utils.RespondSuccess(c, ranked, "Recommendations ranked successfully")
}

// TraceHandler serves POST /api/debug/decision-trace (operator only).
func (r *RecommendationController) TraceHandler(c *gin.Context) {
	var req request_models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "destination is required")
		return
	}

	places := r.catalogService.LoadPlaces(c.Request.Context())
	userCtx := r.buildContext(&req, places)

	trace := r.recommender.RankTrace(c.Request.Context(), req.Destination, req.Preferences, places, userCtx)
	utils.RespondSuccess(c, trace, "Decision trace generated")
}

// ExplainHandler serves POST /api/recommendations/explain: the rationale for
// a single feature vector, without running a full ranking.
func (r *RecommendationController) ExplainHandler(c *gin.Context) {
	var features db_models.FeatureVector
	if err := c.ShouldBindJSON(&features); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "a feature vector is required")
		return
	}

	explanation := r.explainService.Explain(&features)
	utils.RespondSuccess(c, explanation, "Explanation generated")
}

// buildContext falls back to the destination's own coordinates when the
// request carries none, so the distance factor stays meaningful.
func (r *RecommendationController) buildContext(req *request_models.RankRequest,
	places []db_models.Place) request_models.UserContext {
	var destLat, destLon *float64
	if dest := r.catalogService.FindDestination(places, req.Destination); dest != nil {
		destLat = dest.Latitude
		destLon = dest.Longitude
	}
	return req.Context(destLat, destLon)
}
