package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"tripsync/internal/models/db_models"
	"tripsync/internal/models/request_models"
	"tripsync/internal/models/response_models"
	"tripsync/internal/repositories"
)

// RecommenderServiceInterface is the ranking entry point consumed by the
// HTTP layer. Rank and RankTrace always return a (possibly empty) result;
// every dependency failure degrades to a lower-fidelity path internally.
type RecommenderServiceInterface interface {
	Rank(ctx context.Context, destination string, preferences []string,
		places []db_models.Place, userCtx request_models.UserContext) []response_models.RankedPlace
	RankTrace(ctx context.Context, destination string, preferences []string,
		places []db_models.Place, userCtx request_models.UserContext) response_models.DecisionTrace
}

const (
	// interactiveTopN caps the list served to the itinerary path;
	// traceTopN is intentionally wider so the diagnostic view shows more
	// of the tail.
	interactiveTopN = 15
	traceTopN       = 20

	rankingStrategy = "Weighted Sum: Distance(0.4) + Popularity(0.3) + Budget(0.2) + Time(0.1)"
)

type RecommenderService struct {
	cache          repositories.RankingCache
	featureService FeatureServiceInterface
	explainService ExplainServiceInterface
	scorer         ScorerInterface
	logger         *zap.Logger
}

func NewRecommenderService(
	cache repositories.RankingCache,
	featureService FeatureServiceInterface,
	explainService ExplainServiceInterface,
	scorer ScorerInterface,
	logger *zap.Logger,
) RecommenderServiceInterface {
	return &RecommenderService{
		cache:          cache,
		featureService: featureService,
		explainService: explainService,
		scorer:         scorer,
		logger:         logger,
	}
}

func (r *RecommenderService) Rank(ctx context.Context, destination string, preferences []string,
	places []db_models.Place, userCtx request_models.UserContext) []response_models.RankedPlace {
	ranked, _, _ := r.rank(ctx, destination, preferences, places, userCtx, interactiveTopN)
	return ranked
}

func (r *RecommenderService) RankTrace(ctx context.Context, destination string, preferences []string,
	places []db_models.Place, userCtx request_models.UserContext) response_models.DecisionTrace {
	ranked, notes, cacheHit := r.rank(ctx, destination, preferences, places, userCtx, traceTopN)

	traced := make([]response_models.TracedPlace, 0, len(ranked))
	for _, rp := range ranked {
		traced = append(traced, response_models.TracedPlace{
			ID:        rp.Place.ID,
			Name:      rp.Place.Name,
			Category:  rp.Place.Category,
			Score:     rp.Score,
			Source:    rp.Source,
			Features:  rp.Features,
			Reasoning: r.explainService.Explain(rp.Features),
		})
	}

	return response_models.DecisionTrace{
		RankingKey:      r.cache.BuildKey(destination, preferences),
		CacheHit:        cacheHit,
		RankingStrategy: rankingStrategy,
		ProcessingNotes: notes,
		TopRanked:       traced,
	}
}

// rank runs the fallback chain: cached ranking, external scorer, heuristic
// weighted sum. Concurrent requests for the same key may both miss and
// recompute; the last writer wins, which is wasted work but never
// corruption.
func (r *RecommenderService) rank(ctx context.Context, destination string, preferences []string,
	places []db_models.Place, userCtx request_models.UserContext, topN int) ([]response_models.RankedPlace, []string, bool) {

	var notes []string

	if len(places) == 0 {
		notes = append(notes, "Place catalog empty or unavailable; returning no candidates.")
		return []response_models.RankedPlace{}, notes, false
	}

	key := r.cache.BuildKey(destination, preferences)

	if cachedIDs, ok := r.cache.GetRanking(key); ok {
		notes = append(notes, fmt.Sprintf("CACHE HIT: using cached ranking for key %q", key))
		return r.resolveCached(cachedIDs, places), notes, true
	}
	notes = append(notes, fmt.Sprintf("CACHE MISS: computing ranking for key %q", key))

	ranked, scorerNotes := r.scoreWithFallback(ctx, destination, preferences, places, userCtx, topN)
	notes = append(notes, scorerNotes...)

	ids := make([]string, len(ranked))
	for i, rp := range ranked {
		ids[i] = rp.Place.ID
	}
	r.cache.SetRanking(key, ids)
	r.cache.SaveFeatures()

	return ranked, notes, false
}

// resolveCached maps cached ids back onto the current catalog. Ids the
// catalog no longer knows are silently dropped; nothing is rescored.
func (r *RecommenderService) resolveCached(cachedIDs []string, places []db_models.Place) []response_models.RankedPlace {
	byID := make(map[string]db_models.Place, len(places))
	for _, p := range places {
		byID[p.ID] = p
	}

	ranked := make([]response_models.RankedPlace, 0, len(cachedIDs))
	for _, id := range cachedIDs {
		place, ok := byID[id]
		if !ok {
			continue
		}
		rp := response_models.RankedPlace{Place: place, Source: "cache"}
		if fv, ok := r.cache.GetFeature(id); ok {
			rp.Features = &fv
		}
		ranked = append(ranked, rp)
	}
	return ranked
}

func (r *RecommenderService) scoreWithFallback(ctx context.Context, destination string, preferences []string,
	places []db_models.Place, userCtx request_models.UserContext, topN int) ([]response_models.RankedPlace, []string) {

	var notes []string

	results, err := r.scorer.Score(ctx, ScorerRequest{
		Preferences: strings.Join(preferences, ", "),
		Destination: destination,
		UserLat:     userCtx.UserLat,
		UserLon:     userCtx.UserLon,
	})
	if err != nil {
		r.logger.Warn("recommender: external scorer unavailable, using heuristic path", zap.Error(err))
		notes = append(notes, "External scorer unavailable; falling back to heuristic scoring.")
	} else if ranked := r.mapScorerResults(results, places); len(ranked) > 0 {
		notes = append(notes, fmt.Sprintf("External scorer ranked %d places.", len(ranked)))
		return ranked, notes
	} else {
		notes = append(notes, "External scorer returned no usable results; falling back to heuristic scoring.")
	}

	return r.heuristicRank(places, userCtx, topN), notes
}

// mapScorerResults resolves scorer records back to full catalog places, by
// id first and by name as a fallback. The external score becomes the final
// rank score; the heuristic path is skipped entirely.
func (r *RecommenderService) mapScorerResults(results []ScorerResult, places []db_models.Place) []response_models.RankedPlace {
	byID := make(map[string]db_models.Place, len(places))
	byName := make(map[string]db_models.Place, len(places))
	for _, p := range places {
		byID[p.ID] = p
		byName[strings.ToLower(p.Name)] = p
	}

	ranked := make([]response_models.RankedPlace, 0, len(results))
	for _, res := range results {
		place, ok := byID[res.PlaceID]
		if !ok && res.Name != "" {
			place, ok = byName[strings.ToLower(res.Name)]
		}
		if !ok {
			continue
		}
		ranked = append(ranked, response_models.RankedPlace{
			Place:  place,
			Score:  res.Score,
			Source: "scorer",
		})
	}
	return ranked
}

// heuristicRank is the deterministic fallback: fetch-or-build each feature
// vector, combine with the fixed weights, stable-sort descending (ties keep
// catalog order) and truncate.
func (r *RecommenderService) heuristicRank(places []db_models.Place,
	userCtx request_models.UserContext, topN int) []response_models.RankedPlace {

	ranked := make([]response_models.RankedPlace, 0, len(places))
	for _, place := range places {
		fv, ok := r.cache.GetFeature(place.ID)
		if !ok {
			fv = r.featureService.Build(place, userCtx)
			r.cache.SetFeature(place.ID, fv)
		}

		score := fv.DistanceScore*DefaultWeights.Distance +
			fv.PopularityScore*DefaultWeights.Popularity +
			fv.BudgetScore*DefaultWeights.Budget +
			fv.TimeFeasibilityScore*DefaultWeights.Time

		features := fv
		ranked = append(ranked, response_models.RankedPlace{
			Place:    place,
			Score:    score,
			Source:   "heuristic",
			Features: &features,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
