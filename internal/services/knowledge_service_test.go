package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEmbedder returns fixed vectors per text and counts calls per text.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failFor map[string]bool
	calls   map[string]int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: map[string][]float32{},
		failFor: map[string]bool{},
		calls:   map[string]int{},
	}
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[text]++
	if f.failFor[text] {
		return pgvector.Vector{}, fmt.Errorf("embedding backend down")
	}
	if v, ok := f.vectors[text]; ok {
		return pgvector.NewVector(v), nil
	}
	return pgvector.NewVector([]float32{0.1, 0.1}), nil
}

func (f *fakeEmbedder) callCount(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[text]
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadKnowledgeChunks(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"beaches.txt": "Goa beaches are best from November to February.\n\nhi\n  Carry cash for shack vendors.  \n",
		"notes.md":    "should be ignored, wrong extension",
		"alerts.txt":  "Monsoon closures affect coastal roads.",
	})

	chunks := loadKnowledgeChunks(dir, zap.NewNop())
	require.Len(t, chunks, 3)

	// Files in name order, short lines dropped, index counts kept chunks.
	assert.Equal(t, "alerts.txt_0", chunks[0].ID)
	assert.Equal(t, "beaches.txt_0", chunks[1].ID)
	assert.Equal(t, "beaches.txt_1", chunks[2].ID)
	assert.Equal(t, "Carry cash for shack vendors.", chunks[2].Text)
	assert.Equal(t, "beaches.txt", chunks[2].Source)
}

func TestLoadKnowledgeChunksMissingDir(t *testing.T) {
	chunks := loadKnowledgeChunks(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.Empty(t, chunks)
}

func TestSimilaritySearchOrdering(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "goa beaches in winter\ncity museums and galleries\nmountain trekking routes",
	})

	embedder := newFakeEmbedder()
	embedder.vectors["goa beaches in winter"] = []float32{1, 0}
	embedder.vectors["city museums and galleries"] = []float32{0.5, 0.5}
	embedder.vectors["mountain trekking routes"] = []float32{0, 1}
	embedder.vectors["best beaches"] = []float32{1, 0}

	svc := NewKnowledgeService(dir, 2, embedder, zap.NewNop())
	got := svc.SimilaritySearch(context.Background(), "best beaches", 3)

	require.Len(t, got, 3)
	assert.Equal(t, "goa beaches in winter", got[0].Text)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Score, got[i-1].Score)
	}
}

func TestSimilaritySearchTopKBounds(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "first advisory line\nsecond advisory line\nthird advisory line\nfourth advisory line",
	})
	svc := NewKnowledgeService(dir, 2, newFakeEmbedder(), zap.NewNop())

	assert.Len(t, svc.SimilaritySearch(context.Background(), "advisory", 2), 2)

	// k <= 0 falls back to the default of three.
	assert.Len(t, svc.SimilaritySearch(context.Background(), "advisory", 0), 3)

	// k larger than the corpus returns everything.
	assert.Len(t, svc.SimilaritySearch(context.Background(), "advisory", 50), 4)
}

func TestSimilaritySearchEmptyCorpus(t *testing.T) {
	svc := NewKnowledgeService(t.TempDir(), 2, newFakeEmbedder(), zap.NewNop())
	assert.Empty(t, svc.SimilaritySearch(context.Background(), "anything", 5))
}

func TestIndexBuildsOnceUnderConcurrency(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "goa beaches in winter\ncity museums and galleries\nmountain trekking routes",
	})
	embedder := newFakeEmbedder()
	svc := NewKnowledgeService(dir, 2, embedder, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.SimilaritySearch(context.Background(), "query", 2)
		}()
	}
	wg.Wait()

	// Each chunk is embedded exactly once no matter how many callers
	// raced on the first query.
	for _, text := range []string{"goa beaches in winter", "city museums and galleries", "mountain trekking routes"} {
		assert.Equal(t, 1, embedder.callCount(text), text)
	}
}

func TestIndexSubstitutesRandomVectorOnEmbeddingFailure(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "reachable advisory line\nbroken advisory line",
	})
	embedder := newFakeEmbedder()
	embedder.failFor["broken advisory line"] = true

	svc := NewKnowledgeService(dir, 2, embedder, zap.NewNop())
	got := svc.SimilaritySearch(context.Background(), "advisory", 5)

	// The failed chunk stays searchable with a substitute vector.
	require.Len(t, got, 2)
	texts := []string{got[0].Text, got[1].Text}
	assert.Contains(t, texts, "broken advisory line")
}

func TestRetrieveContext(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"alerts.txt": "Monsoon closures affect coastal roads.",
	})
	svc := NewKnowledgeService(dir, 2, newFakeEmbedder(), zap.NewNop())

	got := svc.RetrieveContext(context.Background(), "roads")
	assert.Equal(t, "[alerts.txt] Monsoon closures affect coastal roads.", got)
}

func TestRetrieveContextEmptyCorpus(t *testing.T) {
	svc := NewKnowledgeService(t.TempDir(), 2, newFakeEmbedder(), zap.NewNop())
	got := svc.RetrieveContext(context.Background(), "anything")
	assert.Equal(t, "No relevant information found in knowledge base.", got)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched or empty vectors score zero instead of panicking.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
