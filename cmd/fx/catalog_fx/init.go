package catalog_fx

import (
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripsync/internal/infra"
	"tripsync/internal/repositories"
	"tripsync/internal/services"
)

var Module = fx.Provide(
	provideCatalogRepo, provideCatalogService)

// provideCatalogRepo selects the catalog backend: the JSON file produced by
// the data pipeline (default) or Postgres.
func provideCatalogRepo(logger *zap.Logger) repositories.PlaceRepository {
	source := getEnvWithDefault("CATALOG_SOURCE", "file")

	switch strings.ToLower(source) {
	case "postgres":
		logger.Info("catalog source: postgres")
		return repositories.NewPlaceRepository(infra.InitPostgresql())
	default:
		path := getEnvWithDefault("CATALOG_PATH", "data/processed/database.json")
		logger.Info("catalog source: file", zap.String("path", path))
		return repositories.NewFileCatalogRepository(path)
	}
}

func provideCatalogService(placeRepo repositories.PlaceRepository, logger *zap.Logger) services.CatalogServiceInterface {
	return services.NewCatalogService(placeRepo, logger)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
