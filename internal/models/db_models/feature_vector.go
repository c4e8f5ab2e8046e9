package db_models

// FeatureVector holds the four normalized ranking features for one place
// under one user context. All scores live in [0, 1], rounded to three
// decimals so cached vectors are reproducible across runs.
type FeatureVector struct {
	PlaceID              string      `json:"id"`
	DistanceScore        float64     `json:"distance_score"`
	BudgetScore          float64     `json:"budget_score"`
	PopularityScore      float64     `json:"popularity_score"`
	TimeFeasibilityScore float64     `json:"time_feasibility_score"`
	Meta                 FeatureMeta `json:"meta"`
}

// FeatureMeta carries the raw inputs behind the scores, kept for the
// explanation and debug paths.
type FeatureMeta struct {
	DistanceKM        float64 `json:"distance_km"`
	CostTier          int     `json:"cost_tier"`
	EstimatedDuration float64 `json:"estimated_duration_hours"`
}
