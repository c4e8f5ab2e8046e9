package services

import (
	"sort"
	"strings"

	"tripsync/internal/models/db_models"
	"tripsync/internal/models/response_models"
)

// Weights is the factor weighting used both by the heuristic composite score
// and by the explanation decomposition.
type Weights struct {
	Distance   float64
	Popularity float64
	Budget     float64
	Time       float64
}

// DefaultWeights mirrors the ranking strategy: distance dominates, time is a
// tiebreaker.
var DefaultWeights = Weights{Distance: 0.4, Popularity: 0.3, Budget: 0.2, Time: 0.1}

// dominanceThreshold is the absolute contribution above which a single
// factor is called out as the primary reason.
const dominanceThreshold = 0.15

type ExplainServiceInterface interface {
	Explain(features *db_models.FeatureVector) response_models.Explanation
	ExplainWithWeights(features *db_models.FeatureVector, weights Weights) response_models.Explanation
}

type ExplainService struct{}

func NewExplainService() ExplainServiceInterface {
	return &ExplainService{}
}

func (e *ExplainService) Explain(features *db_models.FeatureVector) response_models.Explanation {
	return e.ExplainWithWeights(features, DefaultWeights)
}

func (e *ExplainService) ExplainWithWeights(features *db_models.FeatureVector, weights Weights) response_models.Explanation {
	if features == nil {
		return response_models.Explanation{
			Text:          "No data available.",
			PrimaryFactor: "None",
			Details:       map[string]float64{},
		}
	}

	contributions := map[string]float64{
		"Distance":   features.DistanceScore * weights.Distance,
		"Popularity": features.PopularityScore * weights.Popularity,
		"Budget":     features.BudgetScore * weights.Budget,
		"Time":       features.TimeFeasibilityScore * weights.Time,
	}

	factors := make([]string, 0, len(contributions))
	for name := range contributions {
		factors = append(factors, name)
	}
	sort.Slice(factors, func(i, j int) bool {
		if contributions[factors[i]] != contributions[factors[j]] {
			return contributions[factors[i]] > contributions[factors[j]]
		}
		return factors[i] < factors[j]
	})

	var sentences []string
	primary := "Balanced Scores"

	if top := factors[0]; contributions[top] > dominanceThreshold {
		switch top {
		case "Distance":
			sentences = append(sentences, "It is geographically convenient for your route.")
			primary = "Proximity"
		case "Popularity":
			sentences = append(sentences, "It is highly rated and popular among travelers.")
			primary = "Popularity"
		case "Budget":
			sentences = append(sentences, "It fits perfectly within your specified budget.")
			primary = "Cost Efficiency"
		case "Time":
			sentences = append(sentences, "You have ample time to explore this.")
			primary = "Time Constraints"
		}
	}

	if features.BudgetScore < 0.5 {
		sentences = append(sentences, "Note: It might be slightly above your preferred budget.")
	}
	if features.DistanceScore < 0.3 {
		sentences = append(sentences, "Note: It is a bit of a detour.")
	}

	text := strings.Join(sentences, " ")
	if text == "" {
		text = "Ranked based on a balanced mix of factors."
	}

	return response_models.Explanation{
		Text:          text,
		PrimaryFactor: primary,
		Details:       contributions,
	}
}
