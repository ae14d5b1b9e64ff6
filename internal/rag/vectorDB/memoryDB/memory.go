package memoryDB

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

type point struct {
	vector []float32
	norm   float64
	chunk  commonModels.Chunk
}

type collection struct {
	order  []string
	points map[string]point
}

// Store is an in-process cosine similarity backend. Used when
// VECTOR_BACKEND=memory and as the vector store in tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) CreateCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionName]; !ok {
		s.collections[collectionName] = &collection{points: make(map[string]point)}
	}
	return nil
}

func (s *Store) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[collectionName]
	if !ok {
		return fmt.Errorf("collection %s does not exist", collectionName)
	}
	for i, chunk := range chunks {
		if _, exists := col.points[chunk.Id]; !exists {
			col.order = append(col.order, chunk.Id)
		}
		vec := append([]float32(nil), vectors[i]...)
		col.points[chunk.Id] = point{vector: vec, norm: norm(vec), chunk: chunk}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, collectionName string, vector []float32, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collectionName]
	if !ok {
		return []commonModels.SearchResult{}, nil
	}

	qn := norm(vector)
	results := make([]commonModels.SearchResult, 0)
	for _, id := range col.order {
		p := col.points[id]
		if p.chunk.Corpus != corpus {
			continue
		}
		results = append(results, commonModels.SearchResult{
			Content:    p.chunk.Text,
			SourceName: p.chunk.SourceName,
			SourcePath: p.chunk.SourcePath,
			ChunkIndex: p.chunk.ChunkIndex,
			Corpus:     p.chunk.Corpus,
			Similarity: cosine(vector, qn, p.vector, p.norm),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count is the number of stored points of corpus in a collection.
func (s *Store) Count(collectionName string, corpus commonModels.CorpusTag) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collectionName]
	if !ok {
		return 0
	}
	n := 0
	for _, p := range col.points {
		if p.chunk.Corpus == corpus {
			n++
		}
	}
	return n
}

// Chunks returns the stored chunks of corpus in insertion order.
func (s *Store) Chunks(collectionName string, corpus commonModels.CorpusTag) []commonModels.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collectionName]
	if !ok {
		return nil
	}
	var out []commonModels.Chunk
	for _, id := range col.order {
		if c := col.points[id].chunk; c.Corpus == corpus {
			out = append(out, c)
		}
	}
	return out
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float32 {
	if an == 0 || bn == 0 {
		return 0
	}
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (an * bn))
}
