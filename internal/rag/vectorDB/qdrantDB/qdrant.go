package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB"
	"github.com/akolanti/ogtriage/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	payloadContent    = "content"
	payloadSourcePDF  = "source_pdf"
	payloadSourcePath = "source_path"
	payloadChunkIndex = "chunk_index"
	payloadStart      = "start"
)

type Options struct {
	Host      string
	Port      int
	APIKey    string
	UseTLS    bool
	PoolSize  uint
	Dimension uint64
}

type ClientHolder struct {
	QObj      *qdrant.Client
	dimension uint64
	logger    *logger_i.Logger
}

func New(opts Options) (*ClientHolder, error) {
	if opts.Host == "" {
		return nil, errors.New("qdrant: empty host")
	}
	if opts.Port == 0 {
		opts.Port = config.QdrantGrpcPort
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = config.QdrantPoolSize
	}
	if opts.Dimension == 0 {
		opts.Dimension = uint64(config.EmbeddingOutputDimensionality)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		APIKey:   opts.APIKey,
		UseTLS:   opts.UseTLS,
		PoolSize: opts.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: could not instantiate: %w", err)
	}

	log := logger_i.NewLogger("Qdrant")
	log.Info("Qdrant client created", "host", opts.Host, "port", opts.Port)
	return &ClientHolder{QObj: client, dimension: opts.Dimension, logger: log}, nil
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

// classify marks gRPC codes that are worth retrying by the caller.
func classify(op string, err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return fmt.Errorf("qdrant %s: %w: %w", op, vectorDB.ErrTransient, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("qdrant %s: %w: %w", op, vectorDB.ErrTransient, err)
	}
	return fmt.Errorf("qdrant %s: %w", op, err)
}

func corpusFilter(corpus commonModels.CorpusTag) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(config.CorpusPayloadKey, string(corpus)),
		},
	}
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, vectorFloat []float32, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error) {
	log := db.logger.WithTrace(ctx)
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Filter:         corpusFilter(corpus),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, classify("query", err)
	}

	matches := make([]commonModels.SearchResult, 0, len(result))
	for _, hit := range result {
		matches = append(matches, toSearchResult(hit.Payload, hit.Score))
	}
	log.Debug("Found matches", "count", len(matches), "corpus", corpus)
	return matches, nil
}

func toSearchResult(payload map[string]*qdrant.Value, score float32) commonModels.SearchResult {
	return commonModels.SearchResult{
		Content:    payload[payloadContent].GetStringValue(),
		SourceName: payload[payloadSourcePDF].GetStringValue(),
		SourcePath: payload[payloadSourcePath].GetStringValue(),
		ChunkIndex: int(payload[payloadChunkIndex].GetIntegerValue()),
		Corpus:     commonModels.CorpusTag(payload[config.CorpusPayloadKey].GetStringValue()),
		Similarity: score,
	}
}

func toPayload(chunk commonModels.Chunk) map[string]any {
	return map[string]any{
		payloadContent:          chunk.Text,
		config.CorpusPayloadKey: string(chunk.Corpus),
		payloadSourcePDF:        chunk.SourceName,
		payloadSourcePath:       chunk.SourcePath,
		payloadChunkIndex:       int64(chunk.ChunkIndex),
		payloadStart:            int64(chunk.Start),
	}
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(toPayload(chunk)),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify("upsert", err)
	}
	return nil
}

// CreateCollection makes the cosine collection and the keyword index on the corpus tag.
func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return classify("collection exists", err)
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify("create collection", err)
	}

	_, err = db.QObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      config.CorpusPayloadKey,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify("create corpus index", err)
	}
	db.logger.Info("Created collection", "collection", collectionName, "dimension", db.dimension)
	return nil
}
