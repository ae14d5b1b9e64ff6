package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type FileResult struct {
	Name    string `json:"name"`
	Chunks  int    `json:"chunks"`
	Skipped bool   `json:"skipped"`
	Err     string `json:"error,omitempty"`
}

type Summary struct {
	Directory   string       `json:"directory"`
	Files       []FileResult `json:"files"`
	TotalChunks int          `json:"total_chunks"`
}

// FindPDFs lists the PDFs directly inside dir, sorted by file name.
// A directory that does not exist holds no PDFs.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

type documentLoader func(path string, name string) (commonModels.Document, error)

// BatchIngestDirectory loads every PDF in dir into the regulations corpus.
// Failures are per file. A missing directory reports no PDFs found; only an
// unreadable directory fails the batch.
func BatchIngestDirectory(ctx context.Context, dir string, chunker *Chunker, store Upserter, out io.Writer) (Summary, error) {
	return batchIngest(ctx, dir, chunker, store, out, LoadDocument)
}

func batchIngest(ctx context.Context, dir string, chunker *Chunker, store Upserter, out io.Writer, load documentLoader) (Summary, error) {
	log := logger_i.NewLogger("Batch Ingestion").WithTrace(ctx).With("chunkSize", chunker.Size(), "overlap", chunker.Overlap())
	summary := Summary{Directory: dir}

	files, err := FindPDFs(dir)
	if err != nil {
		return summary, err
	}
	log.Info("Starting batch ingestion", "dir", dir, "files", len(files))
	if len(files) == 0 {
		fmt.Fprintf(out, "[ingest] No PDF files found in %s\n", dir)
		return summary, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := filepath.Base(path)
		fmt.Fprintf(out, "[ingest] Processing %s\n", name)
		res := FileResult{Name: name}

		doc, err := load(path, name)
		if err == nil {
			res.Chunks, err = IngestDocument(ctx, doc, commonModels.CorpusRegulations, chunker, store)
		}
		switch {
		case errors.Is(err, ErrNoContent):
			res.Skipped = true
			fmt.Fprintf(out, "[ingest] Skipped (no content): %s\n", name)
		case err != nil:
			res.Err = err.Error()
			log.Error("Ingestion failed", "file", name, "error", err)
			fmt.Fprintf(out, "[ingest] Failed %s: %v\n", name, err)
		default:
			summary.TotalChunks += res.Chunks
			fmt.Fprintf(out, "[ingest] Upserted %d chunks from %s\n", res.Chunks, name)
		}
		summary.Files = append(summary.Files, res)
	}

	fmt.Fprintf(out, "[ingest] Completed. Total chunks upserted: %d\n", summary.TotalChunks)
	return summary, nil
}
