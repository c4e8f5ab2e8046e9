package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tripsync/internal/models/db_models"
	"tripsync/internal/repositories"
)

// CatalogServiceInterface is the read side of the place catalog as the
// ranking path sees it. LoadPlaces degrades to an empty catalog on any
// storage failure; rankings over an empty catalog are empty, not errors.
type CatalogServiceInterface interface {
	LoadPlaces(ctx context.Context) []db_models.Place
	FindDestination(places []db_models.Place, name string) *db_models.Place
}

type CatalogService struct {
	placeRepo repositories.PlaceRepository
	logger    *zap.Logger
}

func NewCatalogService(placeRepo repositories.PlaceRepository, logger *zap.Logger) CatalogServiceInterface {
	return &CatalogService{placeRepo: placeRepo, logger: logger}
}

func (c *CatalogService) LoadPlaces(ctx context.Context) []db_models.Place {
	places, err := c.placeRepo.List(ctx)
	if err != nil {
		c.logger.Warn("catalog unavailable, continuing with empty place set", zap.Error(err))
		return []db_models.Place{}
	}
	return places
}

// FindDestination resolves a destination by name, preferring an exact match
// and falling back to a substring match.
func (c *CatalogService) FindDestination(places []db_models.Place, name string) *db_models.Place {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	for i := range places {
		if strings.ToLower(places[i].Name) == needle {
			return &places[i]
		}
	}
	for i := range places {
		if strings.Contains(strings.ToLower(places[i].Name), needle) {
			return &places[i]
		}
	}
	return nil
}
