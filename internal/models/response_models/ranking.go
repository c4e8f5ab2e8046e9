package response_models

import "tripsync/internal/models/db_models"

// RankedPlace is one entry in a served ranking. Source records which path
// produced the score: "cache", "scorer" or "heuristic".
type RankedPlace struct {
	Place    db_models.Place          `json:"place"`
	Score    float64                  `json:"score"`
	Source   string                   `json:"source"`
	Features *db_models.FeatureVector `json:"features,omitempty"`
}

// Explanation is the human-readable rationale for one ranked place.
type Explanation struct {
	Text          string             `json:"text"`
	PrimaryFactor string             `json:"primary_factor"`
	Details       map[string]float64 `json:"details"`
}

// DecisionTrace is the diagnostic view of one ranking run, served on the
// operator-only debug endpoint.
type DecisionTrace struct {
	RankingKey      string        `json:"ranking_key"`
	CacheHit        bool          `json:"cache_hit"`
	RankingStrategy string        `json:"ranking_strategy"`
	ProcessingNotes []string      `json:"processing_notes"`
	TopRanked       []TracedPlace `json:"top_ranked"`
}

// TracedPlace is one ranked place with its full reasoning attached.
type TracedPlace struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Category  string                   `json:"category"`
	Score     float64                  `json:"score"`
	Source    string                   `json:"source"`
	Features  *db_models.FeatureVector `json:"features,omitempty"`
	Reasoning Explanation              `json:"reasoning"`
}
