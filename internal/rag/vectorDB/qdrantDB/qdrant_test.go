package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestPayloadRoundTrip(t *testing.T) {
	chunk := commonModels.Chunk{
		Text:       "Section 6: LDAR surveys at least three times per year",
		Corpus:     commonModels.CorpusRegulations,
		SourceName: "SOR-2018-66.pdf",
		SourcePath: "RAG/Regulations/SOR-2018-66.pdf",
		ChunkIndex: 4,
		Start:      1200,
	}

	payload := qdrant.NewValueMap(toPayload(chunk))
	got := toSearchResult(payload, 0.91)

	if got.Content != chunk.Text || got.SourceName != chunk.SourceName || got.SourcePath != chunk.SourcePath {
		t.Errorf("content mismatch: %+v", got)
	}
	if got.ChunkIndex != 4 || got.Corpus != commonModels.CorpusRegulations || got.Similarity != 0.91 {
		t.Errorf("metadata mismatch: %+v", got)
	}
}

func TestCorpusFilter(t *testing.T) {
	f := corpusFilter(commonModels.CorpusUploads)
	if len(f.Must) != 1 {
		t.Fatalf("expected one condition, got %d", len(f.Must))
	}
	field := f.Must[0].GetField()
	if field.GetKey() != "corpus" || field.GetMatch().GetKeyword() != "uploads" {
		t.Errorf("unexpected condition %v", field)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"quota", status.Error(codes.ResourceExhausted, "slow down"), true},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), true},
		{"bad request", status.Error(codes.InvalidArgument, "bad vector size"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("query", tt.err)
			if vectorDB.IsTransient(err) != tt.transient {
				t.Errorf("IsTransient = %v; want %v (%v)", !tt.transient, tt.transient, err)
			}
			if !errors.Is(err, tt.err) {
				t.Error("expected original error to stay in the chain")
			}
		})
	}
}

func TestNew_RequiresHost(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error for empty host")
	}
}

func TestUpsertBatch_LengthMismatch(t *testing.T) {
	db := &ClientHolder{}
	err := db.UpsertBatch(context.Background(), "c", []commonModels.Chunk{{Text: "a"}}, nil)
	if err == nil {
		t.Error("expected mismatch error")
	}
}
