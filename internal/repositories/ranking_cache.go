package repositories

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tripsync/internal/models/db_models"
)

// RankingCache is the durable key/value store behind the ranking pipeline:
// feature vectors keyed by place id and final rank orders keyed by the
// composite destination|preferences key. It is a performance optimization,
// not a source of truth, so storage failures are logged and swallowed.
type RankingCache interface {
	GetFeature(placeID string) (db_models.FeatureVector, bool)
	SetFeature(placeID string, vector db_models.FeatureVector)
	GetRanking(key string) ([]string, bool)
	SetRanking(key string, placeIDs []string)
	SaveFeatures()
	BuildKey(destination string, preferences []string) string
}

const (
	featureCacheFile = "feature_cache.json"
	rankingCacheFile = "ranking_cache.json"
)

type fileRankingCache struct {
	mu          sync.Mutex
	featurePath string
	rankingPath string
	features    map[string]db_models.FeatureVector
	rankings    map[string][]string
	logger      *zap.Logger
}

// NewFileRankingCache loads both cache files from storageDir. A missing or
// unreadable file degrades to an empty map; startup never fails on cache
// state.
func NewFileRankingCache(storageDir string, logger *zap.Logger) RankingCache {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		logger.Warn("ranking cache: cannot create storage dir, cache will not persist",
			zap.String("dir", storageDir), zap.Error(err))
	}

	c := &fileRankingCache{
		featurePath: filepath.Join(storageDir, featureCacheFile),
		rankingPath: filepath.Join(storageDir, rankingCacheFile),
		features:    map[string]db_models.FeatureVector{},
		rankings:    map[string][]string{},
		logger:      logger,
	}
	loadJSONFile(c.featurePath, &c.features, logger)
	loadJSONFile(c.rankingPath, &c.rankings, logger)
	return c
}

func loadJSONFile(path string, out interface{}, logger *zap.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("ranking cache: unreadable cache file, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("ranking cache: corrupt cache file, starting empty",
			zap.String("path", path), zap.Error(err))
	}
}

// writeJSONFile must be called with c.mu held so that flushes of the same
// file never interleave.
func (c *fileRankingCache) writeJSONFile(path string, in interface{}) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		c.logger.Warn("ranking cache: marshal failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("ranking cache: write failed", zap.String("path", path), zap.Error(err))
	}
}

func (c *fileRankingCache) GetFeature(placeID string) (db_models.FeatureVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.features[placeID]
	return v, ok
}

func (c *fileRankingCache) SetFeature(placeID string, vector db_models.FeatureVector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features[placeID] = vector
}

func (c *fileRankingCache) GetRanking(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.rankings[key]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

// SetRanking writes through to the ranking file immediately; rankings change
// rarely and in bulk.
func (c *fileRankingCache) SetRanking(key string, placeIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(placeIDs))
	copy(ids, placeIDs)
	c.rankings[key] = ids
	c.writeJSONFile(c.rankingPath, c.rankings)
}

// SaveFeatures flushes the feature map; callers batch SetFeature calls during
// a scoring pass and flush once at the end.
func (c *fileRankingCache) SaveFeatures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeJSONFile(c.featurePath, c.features)
}

// BuildKey derives the composite cache key. Permutations of the same
// preference set map to the same key.
func (c *fileRankingCache) BuildKey(destination string, preferences []string) string {
	dest := strings.ToLower(strings.TrimSpace(destination))

	prefs := make([]string, 0, len(preferences))
	for _, p := range preferences {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			prefs = append(prefs, p)
		}
	}
	if len(prefs) == 0 {
		return dest + "|general"
	}
	sort.Strings(prefs)
	return dest + "|" + strings.Join(prefs, "_")
}
