package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

// ErrNoContent marks a document that extracted to nothing. Callers skip it.
var ErrNoContent = errors.New("no content to ingest")

// Upserter is the part of the vector store adapter ingestion needs.
type Upserter interface {
	Upsert(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error)
}

// LoadDocument extracts the text of a file on disk. name defaults to the base name.
func LoadDocument(path string, name string) (commonModels.Document, error) {
	log := logger_i.NewLogger("Document Loader")
	if name == "" {
		name = filepath.Base(path)
	}
	docType := getDocType(path)
	if docType == commonModels.ERR {
		return commonModels.Document{}, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}

	pages, err := extractText(path, docType, log)
	if err != nil {
		return commonModels.Document{}, err
	}

	return commonModels.Document{
		Id:                  name,
		Name:                name,
		Path:                path,
		Text:                joinPages(pages),
		ContentType:         docType,
		LastIngestTimestamp: time.Now(),
	}, nil
}

// IngestDocument chunks an already loaded document into corpus.
// A document without text returns ErrNoContent and stores nothing.
func IngestDocument(ctx context.Context, doc commonModels.Document, corpus commonModels.CorpusTag, chunker *Chunker, store Upserter) (int, error) {
	log := logger_i.NewLogger("Document Ingestion").WithTrace(ctx).With("document", doc.Name, "corpus", corpus)

	chunks := chunker.Split(doc, corpus)
	if len(chunks) == 0 {
		log.Warn("Document has no content")
		return 0, ErrNoContent
	}

	log.Debug("Upserting chunks", "count", len(chunks))
	n, err := store.Upsert(ctx, chunks, corpus)
	if err != nil {
		return 0, fmt.Errorf("upserting %s: %w", doc.Name, err)
	}
	return n, nil
}

// IngestFile is LoadDocument followed by IngestDocument.
func IngestFile(ctx context.Context, path string, name string, corpus commonModels.CorpusTag, chunker *Chunker, store Upserter) (int, error) {
	doc, err := LoadDocument(path, name)
	if err != nil {
		return 0, err
	}
	return IngestDocument(ctx, doc, corpus, chunker, store)
}
