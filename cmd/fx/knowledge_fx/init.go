package knowledge_fx

import (
	"os"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripsync/internal/api/controllers"
	"tripsync/internal/services"
	"tripsync/pkg/utils"
)

var Module = fx.Provide(
	provideEmbeddingClient,
	provideKnowledgeService,
	provideKnowledgeController)

func provideEmbeddingClient(logger *zap.Logger) utils.EmbeddingClientInterface {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := getEnvWithDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small")
	if apiKey == "" {
		logger.Warn("OPENAI_API_KEY not set; knowledge index will run on substitute vectors")
	}
	return utils.NewOpenAIEmbeddingClient(apiKey, model)
}

func provideKnowledgeService(embedder utils.EmbeddingClientInterface, logger *zap.Logger) services.KnowledgeServiceInterface {
	corpusDir := getEnvWithDefault("KNOWLEDGE_DIR", "knowledge_docs")

	dim := 0
	if raw := os.Getenv("EMBEDDING_DIM"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			dim = n
		}
	}
	return services.NewKnowledgeService(corpusDir, dim, embedder, logger)
}

func provideKnowledgeController(knowledgeService services.KnowledgeServiceInterface) *controllers.KnowledgeController {
	return controllers.NewKnowledgeController(knowledgeService)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
