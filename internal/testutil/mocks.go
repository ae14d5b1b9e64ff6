package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/llm"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.Chunk, vectors [][]float32) error
	OnSearch           func(ctx context.Context, name string, vector []float32, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error)
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) Search(ctx context.Context, name string, vector []float32, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, name, vector, corpus, topK)
	}
	return []commonModels.SearchResult{}, nil
}

// MockEmbedder implements embedding.Embedder. Without handlers it falls back to HashEmbedder.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return HashEmbedder{}.GetEmbedding(ctx, query)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	return HashEmbedder{}.BatchEmbedding(ctx, chunks)
}

const hashDims = 256

// HashEmbedder is a bag of words embedder: texts sharing words land close together.
type HashEmbedder struct{}

func (HashEmbedder) GetEmbedding(_ context.Context, text string) ([]float32, error) {
	return hashVector(text), nil
}

func (HashEmbedder) BatchEmbedding(_ context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = hashVector(c)
	}
	return out, nil
}

func hashVector(text string) []float32 {
	v := make([]float32, hashDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%hashDims]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		// keep the vector non zero so cosine stays defined
		v[0] = 1
		return v
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v
}

// MockLLM implements llm.Provider. Calls are recorded in order.
type MockLLM struct {
	OnGenerate func(ctx context.Context, req llm.Request) (llm.Response, error)

	mu    sync.Mutex
	calls []llm.Request
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return llm.Response{Text: "mocked llm response"}, nil
}

func (m *MockLLM) Calls() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// ScriptedLLM returns its responses in order and repeats the last one once exhausted.
func ScriptedLLM(responses ...llm.Response) *MockLLM {
	var mu sync.Mutex
	next := 0
	return &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (llm.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return llm.Response{}, nil
		}
		i := min(next, len(responses)-1)
		next++
		return responses[i], nil
	}}
}
