package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tripsync/internal/models/response_models"
	"tripsync/pkg/utils"
)

// KnowledgeChunk is one retrievable unit of advisory text, immutable once
// loaded from the corpus.
type KnowledgeChunk struct {
	ID     string
	Text   string
	Source string
}

type indexEntry struct {
	chunk     KnowledgeChunk
	embedding pgvector.Vector
}

// KnowledgeServiceInterface answers top-k similarity queries over the
// advisory corpus. Retrieval is advisory: both methods always return a
// (possibly empty) result and never an error.
type KnowledgeServiceInterface interface {
	SimilaritySearch(ctx context.Context, query string, k int) []response_models.KnowledgeSnippet
	RetrieveContext(ctx context.Context, query string) string
}

// defaultTopK is used when a caller passes k <= 0.
const defaultTopK = 3

// minChunkLength drops noise lines (blank separators, stray punctuation)
// during corpus chunking.
const minChunkLength = 5

type KnowledgeService struct {
	corpusDir string
	embedder  utils.EmbeddingClientInterface
	logger    *zap.Logger

	// The index is built once per process lifetime, lazily on the first
	// query. buildGroup shares one in-flight build among concurrent
	// first callers.
	buildGroup singleflight.Group
	mu         sync.RWMutex
	ready      bool
	entries    []indexEntry

	// dim is the embedding dimensionality used for substitute vectors
	// when the embedding collaborator fails for a chunk.
	dim int
}

func NewKnowledgeService(corpusDir string, embeddingDim int,
	embedder utils.EmbeddingClientInterface, logger *zap.Logger) KnowledgeServiceInterface {
	if embeddingDim <= 0 {
		embeddingDim = 1536
	}
	return &KnowledgeService{
		corpusDir: corpusDir,
		embedder:  embedder,
		logger:    logger,
		dim:       embeddingDim,
	}
}

func (s *KnowledgeService) SimilaritySearch(ctx context.Context, query string, k int) []response_models.KnowledgeSnippet {
	if k <= 0 {
		k = defaultTopK
	}
	s.ensureIndex(ctx)

	queryVec := s.embedOrSubstitute(ctx, query)
	queryFloats := queryVec.Slice()

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]response_models.KnowledgeSnippet, 0, len(s.entries))
	for _, entry := range s.entries {
		scored = append(scored, response_models.KnowledgeSnippet{
			ID:     entry.chunk.ID,
			Text:   entry.chunk.Text,
			Source: entry.chunk.Source,
			Score:  cosineSimilarity(queryFloats, entry.embedding.Slice()),
		})
	}

	// Stable sort keeps corpus order on score ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// RetrieveContext formats the top snippets as plain grounding text for the
// narrative layer.
func (s *KnowledgeService) RetrieveContext(ctx context.Context, query string) string {
	results := s.SimilaritySearch(ctx, query, defaultTopK)
	if len(results) == 0 {
		return "No relevant information found in knowledge base."
	}

	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("[%s] %s", r.Source, r.Text)
	}
	return strings.Join(lines, "\n")
}

// ensureIndex triggers the lazy build. Concurrent first-time callers await
// the same in-flight build; the index is never built twice.
func (s *KnowledgeService) ensureIndex(ctx context.Context) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return
	}

	s.buildGroup.Do("build", func() (interface{}, error) {
		s.buildIndex(ctx)
		return nil, nil
	})
}

func (s *KnowledgeService) buildIndex(ctx context.Context) {
	chunks := loadKnowledgeChunks(s.corpusDir, s.logger)

	entries := make([]indexEntry, 0, len(chunks))
	substituted := 0

	// Chunks are embedded sequentially to respect upstream rate limits.
	for _, chunk := range chunks {
		embedding, err := s.embedder.GetEmbedding(ctx, chunk.Text)
		if err != nil {
			s.logger.Warn("knowledge index: embedding failed, substituting random vector",
				zap.String("chunk", chunk.ID), zap.Error(err))
			embedding = randomVector(s.dim)
			substituted++
		} else if n := len(embedding.Slice()); n > 0 {
			s.dim = n
		}
		entries = append(entries, indexEntry{chunk: chunk, embedding: embedding})
	}

	s.mu.Lock()
	s.entries = entries
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("knowledge index ready",
		zap.Int("chunks", len(entries)),
		zap.Int("substituted_embeddings", substituted))
}

func (s *KnowledgeService) embedOrSubstitute(ctx context.Context, text string) pgvector.Vector {
	embedding, err := s.embedder.GetEmbedding(ctx, text)
	if err != nil {
		s.logger.Warn("knowledge index: query embedding failed, substituting random vector", zap.Error(err))
		return randomVector(s.dim)
	}
	return embedding
}

// loadKnowledgeChunks splits every corpus document into line chunks,
// discarding lines shorter than minChunkLength. Chunk ids are
// {filename}_{index within file}; files are walked in name order so corpus
// order is deterministic.
func loadKnowledgeChunks(dir string, logger *zap.Logger) []KnowledgeChunk {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("knowledge corpus unavailable, index will be empty",
			zap.String("dir", dir), zap.Error(err))
		return nil
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chunks []KnowledgeChunk
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("knowledge corpus: unreadable document, skipping",
				zap.String("file", name), zap.Error(err))
			continue
		}

		index := 0
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if len(line) < minChunkLength {
				continue
			}
			chunks = append(chunks, KnowledgeChunk{
				ID:     fmt.Sprintf("%s_%d", name, index),
				Text:   line,
				Source: name,
			})
			index++
		}
	}
	return chunks
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// randomVector keeps the index usable in degraded form when the embedding
// collaborator is down; similarity against it is meaningless but bounded.
func randomVector(dim int) pgvector.Vector {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return pgvector.NewVector(v)
}
