package repositories

import (
	"context"

	"gorm.io/gorm"

	"tripsync/internal/models/db_models"
)

// PlaceRepository reads the place catalog. The catalog is owned by the
// ingestion side; the ranking core never writes through this interface.
type PlaceRepository interface {
	List(ctx context.Context) ([]db_models.Place, error)
}

type placeRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) List(ctx context.Context) ([]db_models.Place, error) {
	var places []db_models.Place
	err := r.db.WithContext(ctx).
		Order("place_id").
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}
