package ranking_fx

import (
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripsync/internal/api/controllers"
	"tripsync/internal/repositories"
	"tripsync/internal/services"
)

var Module = fx.Provide(
	provideRankingCache,
	provideFeatureService,
	provideExplainService,
	provideScorer,
	provideRecommenderService,
	provideRecommendationController)

func provideRankingCache(logger *zap.Logger) repositories.RankingCache {
	dir := getEnvWithDefault("STORAGE_DIR", "storage")
	return repositories.NewFileRankingCache(dir, logger)
}

func provideFeatureService() services.FeatureServiceInterface {
	return services.NewFeatureService()
}

func provideExplainService() services.ExplainServiceInterface {
	return services.NewExplainService()
}

// provideScorer builds the external scorer from SCORER_COMMAND, e.g.
// "python3 ml_engine/run_recommendations.py". An empty command yields a
// scorer that always reports unavailable, which routes every miss to the
// heuristic path.
func provideScorer(logger *zap.Logger) services.ScorerInterface {
	parts := strings.Fields(os.Getenv("SCORER_COMMAND"))
	var command string
	var args []string
	if len(parts) > 0 {
		command = parts[0]
		args = parts[1:]
	}
	return services.NewProcessScorer(command, args, logger)
}

func provideRecommenderService(
	cache repositories.RankingCache,
	featureService services.FeatureServiceInterface,
	explainService services.ExplainServiceInterface,
	scorer services.ScorerInterface,
	logger *zap.Logger,
) services.RecommenderServiceInterface {
	return services.NewRecommenderService(cache, featureService, explainService, scorer, logger)
}

func provideRecommendationController(
	recommender services.RecommenderServiceInterface,
	catalogService services.CatalogServiceInterface,
	explainService services.ExplainServiceInterface,
) *controllers.RecommendationController {
	return controllers.NewRecommendationController(recommender, catalogService, explainService)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
