package services

import (
	"math"
	"strings"

	"tripsync/internal/models/db_models"
	"tripsync/internal/models/request_models"
)

// FeatureServiceInterface computes the normalized feature vector for one
// place under one user context. Build is pure and total: identical inputs
// yield bit-identical vectors, and missing inputs degrade to neutral
// defaults instead of failing.
type FeatureServiceInterface interface {
	Build(place db_models.Place, ctx request_models.UserContext) db_models.FeatureVector
}

type FeatureService struct{}

func NewFeatureService() FeatureServiceInterface {
	return &FeatureService{}
}

const earthRadiusKM = 6371

// defaultVisitDuration applies to any category without a specific estimate.
const defaultVisitDuration = 1.5

func (f *FeatureService) Build(place db_models.Place, ctx request_models.UserContext) db_models.FeatureVector {
	distanceScore, distanceKM := distanceScore(place, ctx)
	budgetScore, costTier := budgetScore(place, ctx)
	popularity := popularityScore(place)
	timeScore, estimated := timeFeasibilityScore(place, ctx)

	return db_models.FeatureVector{
		PlaceID:              place.ID,
		DistanceScore:        round3(distanceScore),
		BudgetScore:          round3(budgetScore),
		PopularityScore:      round3(popularity),
		TimeFeasibilityScore: round3(timeScore),
		Meta: db_models.FeatureMeta{
			DistanceKM:        math.Round(distanceKM*10) / 10,
			CostTier:          costTier,
			EstimatedDuration: estimated,
		},
	}
}

// distanceScore decays with distance: 1.0 at 0 km, ~0.5 at 10 km, ~0.09 at
// 100 km. Missing coordinates on either side score a neutral 0.5.
func distanceScore(place db_models.Place, ctx request_models.UserContext) (score, km float64) {
	if ctx.UserLat == nil || ctx.UserLon == nil || !place.HasCoordinates() {
		return 0.5, 0
	}
	km = haversineKM(*ctx.UserLat, *ctx.UserLon, *place.Latitude, *place.Longitude)
	return 1 / (1 + km/10), km
}

func budgetScore(place db_models.Place, ctx request_models.UserContext) (float64, int) {
	costTier := place.CostTier
	if costTier == 0 {
		costTier = 2
	}
	budgetLevel := ctx.BudgetLevel
	if budgetLevel == 0 {
		budgetLevel = 2
	}

	if costTier <= budgetLevel {
		return 1.0, costTier
	}
	diff := float64(costTier - budgetLevel)
	return math.Max(0, 1-diff*0.5), costTier
}

// popularityScore blends the star rating (60%) with a log-scaled review
// count (40%) that saturates near 1000 reviews.
func popularityScore(place db_models.Place) float64 {
	rating := clamp(place.Rating, 0, 5)
	reviews := place.ReviewCount
	if reviews < 0 {
		reviews = 0
	}

	normalizedRating := rating / 5
	normalizedReviews := math.Min(math.Log10(float64(reviews)+1)/3, 1)
	return normalizedRating*0.6 + normalizedReviews*0.4
}

func timeFeasibilityScore(place db_models.Place, ctx request_models.UserContext) (float64, float64) {
	estimated := estimateVisitDuration(place.Category)

	available := ctx.AvailableTimeHours
	if available <= 0 {
		available = request_models.DefaultAvailableTimeHours
	}
	if available >= estimated {
		return 1.0, estimated
	}
	return available / estimated, estimated
}

func estimateVisitDuration(category string) float64 {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "museum") || strings.Contains(c, "zoo"):
		return 2.5
	case strings.Contains(c, "park") || strings.Contains(c, "beach"):
		return 2.0
	case strings.Contains(c, "viewpoint"):
		return 0.5
	case strings.Contains(c, "restaurant"):
		return 1.5
	default:
		return defaultVisitDuration
	}
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// round3 keeps cached vectors reproducible across runs.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
