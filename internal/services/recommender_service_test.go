package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripsync/internal/models/db_models"
	"tripsync/internal/repositories"
)

type fakeScorer struct {
	results []ScorerResult
	err     error
	calls   int
}

func (f *fakeScorer) Score(ctx context.Context, req ScorerRequest) ([]ScorerResult, error) {
	f.calls++
	return f.results, f.err
}

func newTestRecommender(t *testing.T, scorer ScorerInterface) (RecommenderServiceInterface, repositories.RankingCache) {
	t.Helper()
	cache := repositories.NewFileRankingCache(t.TempDir(), zap.NewNop())
	svc := NewRecommenderService(cache, NewFeatureService(), NewExplainService(), scorer, zap.NewNop())
	return svc, cache
}

func catalogPlace(id, name string) db_models.Place {
	return db_models.Place{ID: id, Name: name, Category: "Attraction", CostTier: 2, Rating: 4.0}
}

func TestRankEmptyCatalog(t *testing.T) {
	scorer := &fakeScorer{}
	svc, cache := newTestRecommender(t, scorer)

	got := svc.Rank(context.Background(), "Paris", []string{"art"}, nil, testContext())
	assert.Empty(t, got)
	assert.Equal(t, 0, scorer.calls)

	// An empty result must not be persisted as a ranking.
	_, ok := cache.GetRanking(cache.BuildKey("Paris", []string{"art"}))
	assert.False(t, ok)
}

func TestRankCacheHitSkipsScoring(t *testing.T) {
	scorer := &fakeScorer{}
	svc, cache := newTestRecommender(t, scorer)

	cache.SetRanking("paris|art_history", []string{"p1", "p2"})

	// The catalog only knows p1; p2 must be dropped, not rescored.
	places := []db_models.Place{catalogPlace("p1", "Louvre")}
	got := svc.Rank(context.Background(), "Paris", []string{"history", "art"}, places, testContext())

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].Place.ID)
	assert.Equal(t, "cache", got[0].Source)
	assert.Equal(t, 0, scorer.calls)
}

func TestRankCacheHitAttachesCachedFeatures(t *testing.T) {
	scorer := &fakeScorer{}
	svc, cache := newTestRecommender(t, scorer)

	fv := db_models.FeatureVector{PlaceID: "p1", DistanceScore: 0.8, BudgetScore: 1, PopularityScore: 0.5, TimeFeasibilityScore: 1}
	cache.SetFeature("p1", fv)
	cache.SetRanking("paris|general", []string{"p1"})

	got := svc.Rank(context.Background(), "Paris", nil, []db_models.Place{catalogPlace("p1", "Louvre")}, testContext())
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Features)
	assert.Equal(t, fv, *got[0].Features)
}

func TestRankScorerPathSkipsHeuristic(t *testing.T) {
	scorer := &fakeScorer{results: []ScorerResult{
		{PlaceID: "p2", Score: 0.9},
		{PlaceID: "p1", Score: 0.4},
		{PlaceID: "ghost", Score: 0.99},
	}}
	svc, cache := newTestRecommender(t, scorer)

	places := []db_models.Place{catalogPlace("p1", "Louvre"), catalogPlace("p2", "Orsay")}
	got := svc.Rank(context.Background(), "Paris", []string{"art"}, places, testContext())

	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].Place.ID)
	assert.Equal(t, "p1", got[1].Place.ID)
	assert.Equal(t, "scorer", got[0].Source)
	assert.Equal(t, 0.9, got[0].Score)

	// The heuristic path never ran, so no feature vectors were built.
	_, ok := cache.GetFeature("p1")
	assert.False(t, ok)

	// The ranking itself is persisted for the next request.
	ids, ok := cache.GetRanking("paris|art")
	require.True(t, ok)
	assert.Equal(t, []string{"p2", "p1"}, ids)
}

func TestRankScorerMatchesByName(t *testing.T) {
	scorer := &fakeScorer{results: []ScorerResult{
		{PlaceID: "unknown-id", Name: "LOUVRE", Score: 0.7},
	}}
	svc, _ := newTestRecommender(t, scorer)

	places := []db_models.Place{catalogPlace("p1", "Louvre")}
	got := svc.Rank(context.Background(), "Paris", nil, places, testContext())

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].Place.ID)
}

func TestRankHeuristicFallbackOnScorerError(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("boom")}
	svc, cache := newTestRecommender(t, scorer)

	near := catalogPlace("near", "Near Fort")
	near.Latitude, near.Longitude = ptr(18.52), ptr(73.85)
	far := catalogPlace("far", "Far Fort")
	far.Latitude, far.Longitude = ptr(19.52), ptr(73.85)

	got := svc.Rank(context.Background(), "Pune", []string{"history"}, []db_models.Place{far, near}, testContext())

	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Place.ID)
	assert.Equal(t, "heuristic", got[0].Source)
	assert.Equal(t, 1, scorer.calls)

	// Feature vectors built during the fallback are persisted.
	_, ok := cache.GetFeature("near")
	assert.True(t, ok)
}

func TestRankHeuristicCompositeScore(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("down")}
	svc, _ := newTestRecommender(t, scorer)

	// No coordinates: distance is neutral 0.5. Rating 4.0 with zero
	// reviews gives popularity 0.48. Tier 2 within budget 2 gives 1.0,
	// and four hours cover the default 1.5h visit.
	place := catalogPlace("p1", "Fort")
	got := svc.Rank(context.Background(), "Pune", nil, []db_models.Place{place}, testContext())

	require.Len(t, got, 1)
	want := 0.4*0.5 + 0.3*0.48 + 0.2*1.0 + 0.1*1.0
	assert.InDelta(t, want, got[0].Score, 1e-9)
}

func TestRankHeuristicStableTieBreak(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("down")}
	svc, _ := newTestRecommender(t, scorer)

	a := catalogPlace("a", "First")
	b := catalogPlace("b", "Second")
	got := svc.Rank(context.Background(), "Pune", nil, []db_models.Place{a, b}, testContext())

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Place.ID)
	assert.Equal(t, "b", got[1].Place.ID)
}

func TestRankTruncation(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("down")}
	svc, _ := newTestRecommender(t, scorer)

	places := make([]db_models.Place, 0, 25)
	for i := 0; i < 25; i++ {
		places = append(places, catalogPlace(fmt.Sprintf("p%d", i), fmt.Sprintf("Place %d", i)))
	}

	ranked := svc.Rank(context.Background(), "Pune", nil, places, testContext())
	assert.Len(t, ranked, 15)

	scorer2 := &fakeScorer{err: fmt.Errorf("down")}
	svc2, _ := newTestRecommender(t, scorer2)
	trace := svc2.RankTrace(context.Background(), "Pune", nil, places, testContext())
	assert.Len(t, trace.TopRanked, 20)
}

func TestRankTrace(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("down")}
	svc, _ := newTestRecommender(t, scorer)

	places := []db_models.Place{catalogPlace("p1", "Fort")}

	trace := svc.RankTrace(context.Background(), "Goa", []string{"Beach", "nightlife"}, places, testContext())
	assert.Equal(t, "goa|beach_nightlife", trace.RankingKey)
	assert.False(t, trace.CacheHit)
	assert.Contains(t, trace.RankingStrategy, "Weighted Sum")
	require.Len(t, trace.TopRanked, 1)
	assert.NotEmpty(t, trace.TopRanked[0].Reasoning.Text)

	found := false
	for _, note := range trace.ProcessingNotes {
		if note == `CACHE MISS: computing ranking for key "goa|beach_nightlife"` {
			found = true
		}
	}
	assert.True(t, found, "expected a cache miss note, got %v", trace.ProcessingNotes)

	// The first call persisted the ranking; the second is a hit.
	again := svc.RankTrace(context.Background(), "Goa", []string{"nightlife", "beach"}, places, testContext())
	assert.True(t, again.CacheHit)
}
