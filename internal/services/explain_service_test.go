package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tripsync/internal/models/db_models"
)

func TestExplainNilVector(t *testing.T) {
	svc := NewExplainService()

	got := svc.Explain(nil)
	assert.Equal(t, "No data available.", got.Text)
	assert.Equal(t, "None", got.PrimaryFactor)
	assert.Empty(t, got.Details)
}

func TestExplainDominantFactor(t *testing.T) {
	svc := NewExplainService()

	tests := []struct {
		name        string
		features    db_models.FeatureVector
		wantPrimary string
		wantPhrase  string
	}{
		{
			name:        "proximity dominates",
			features:    db_models.FeatureVector{DistanceScore: 0.95, PopularityScore: 0.2, BudgetScore: 0.5, TimeFeasibilityScore: 0.5},
			wantPrimary: "Proximity",
			wantPhrase:  "geographically convenient",
		},
		{
			name:        "popularity dominates",
			features:    db_models.FeatureVector{DistanceScore: 0.3, PopularityScore: 0.9, BudgetScore: 0.6, TimeFeasibilityScore: 0.5},
			wantPrimary: "Popularity",
			wantPhrase:  "highly rated",
		},
		{
			name:        "budget dominates",
			features:    db_models.FeatureVector{DistanceScore: 0.3, PopularityScore: 0.3, BudgetScore: 1.0, TimeFeasibilityScore: 0.5},
			wantPrimary: "Cost Efficiency",
			wantPhrase:  "fits perfectly within your specified budget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Explain(&tt.features)
			assert.Equal(t, tt.wantPrimary, got.PrimaryFactor)
			assert.Contains(t, got.Text, tt.wantPhrase)
		})
	}
}

func TestExplainBalancedScores(t *testing.T) {
	svc := NewExplainService()

	// Every weighted contribution lands at or below the dominance
	// threshold, so no single factor may be called out.
	features := db_models.FeatureVector{
		DistanceScore:        0.3,
		PopularityScore:      0.5,
		BudgetScore:          0.75,
		TimeFeasibilityScore: 1.0,
	}
	got := svc.Explain(&features)
	assert.Equal(t, "Balanced Scores", got.PrimaryFactor)
	assert.Equal(t, "Ranked based on a balanced mix of factors.", got.Text)
}

func TestExplainCautions(t *testing.T) {
	svc := NewExplainService()

	features := db_models.FeatureVector{
		DistanceScore:        0.2,
		PopularityScore:      0.9,
		BudgetScore:          0.4,
		TimeFeasibilityScore: 0.8,
	}
	got := svc.Explain(&features)
	assert.Contains(t, got.Text, "slightly above your preferred budget")
	assert.Contains(t, got.Text, "a bit of a detour")

	// Cautions trail the headline sentence.
	assert.True(t, strings.HasPrefix(got.Text, "It is highly rated"), got.Text)
}

func TestExplainDetailsAreWeightedContributions(t *testing.T) {
	svc := NewExplainService()

	features := db_models.FeatureVector{
		DistanceScore:        1.0,
		PopularityScore:      0.5,
		BudgetScore:          1.0,
		TimeFeasibilityScore: 1.0,
	}
	got := svc.Explain(&features)
	assert.InDelta(t, 0.4, got.Details["Distance"], 1e-9)
	assert.InDelta(t, 0.15, got.Details["Popularity"], 1e-9)
	assert.InDelta(t, 0.2, got.Details["Budget"], 1e-9)
	assert.InDelta(t, 0.1, got.Details["Time"], 1e-9)
}

func TestExplainWithCustomWeights(t *testing.T) {
	svc := NewExplainService()

	features := db_models.FeatureVector{
		DistanceScore:        0.2,
		PopularityScore:      0.9,
		BudgetScore:          0.6,
		TimeFeasibilityScore: 0.5,
	}
	weights := Weights{Distance: 0.1, Popularity: 0.1, Budget: 0.1, Time: 0.7}
	got := svc.ExplainWithWeights(&features, weights)
	assert.Equal(t, "Time Constraints", got.PrimaryFactor)
}
