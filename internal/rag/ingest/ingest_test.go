package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"pgregory.net/rapid"
)

type mockUpserter struct {
	onUpsert func(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error)
	calls    int
}

func (m *mockUpserter) Upsert(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error) {
	m.calls++
	if m.onUpsert != nil {
		return m.onUpsert(ctx, chunks, corpus)
	}
	return len(chunks), nil
}

func mustChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := NewChunker(size, overlap)
	if err != nil {
		t.Fatalf("NewChunker(%d, %d): %v", size, overlap, err)
	}
	return c
}

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"REGS.PDF", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.TXT},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
		if SupportedType(tt.path) != (tt.expected != commonModels.ERR) {
			t.Errorf("SupportedType(%s) disagrees with getDocType", tt.path)
		}
	}
}

func TestNewChunker_Validation(t *testing.T) {
	tests := []struct {
		size, overlap int
		ok            bool
	}{
		{500, 200, true},
		{10, 0, true},
		{0, 0, false},
		{10, 10, false},
		{10, -1, false},
	}
	for _, tt := range tests {
		_, err := NewChunker(tt.size, tt.overlap)
		if (err == nil) != tt.ok {
			t.Errorf("NewChunker(%d, %d) err = %v; want ok=%v", tt.size, tt.overlap, err, tt.ok)
		}
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c := mustChunker(t, 50, 10)
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if got := c.Split(commonModels.Document{Text: text}, commonModels.CorpusUploads); len(got) != 0 {
			t.Errorf("Split(%q) returned %d chunks, want 0", text, len(got))
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := mustChunker(t, 500, 200)
	doc := commonModels.Document{Name: "venting.pdf", Path: "/tmp/venting.pdf", Text: "Tank venting operations and flare routing requirements"}

	chunks := c.Split(doc, commonModels.CorpusUploads)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	got := chunks[0]
	if got.Text != doc.Text || got.ChunkIndex != 0 || got.Start != 0 {
		t.Errorf("unexpected chunk: %+v", got)
	}
	if got.SourceName != "venting.pdf" || got.SourcePath != "/tmp/venting.pdf" || got.Corpus != commonModels.CorpusUploads {
		t.Errorf("metadata not inherited: %+v", got)
	}
	if got.Id == "" {
		t.Error("expected a chunk id")
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	c := mustChunker(t, 40, 5)
	text := "First paragraph about LDAR surveys.\n\nSecond paragraph about flaring limits."

	chunks := c.Split(commonModels.Document{Name: "d", Text: text}, commonModels.CorpusRegulations)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first chunk to end on the paragraph break, got %q", chunks[0].Text)
	}
}

func TestSplit_OverlapAndIndices(t *testing.T) {
	c := mustChunker(t, 30, 10)
	text := strings.Repeat("methane venting limit applies here. ", 10)

	chunks := c.Split(commonModels.Document{Name: "d", Text: text}, commonModels.CorpusRegulations)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.ChunkIndex)
		}
		if n := len([]rune(ch.Text)); n > 30 {
			t.Errorf("chunk %d has %d runes, limit 30", i, n)
		}
		if i > 0 {
			prevEnd := chunks[i-1].Start + len([]rune(chunks[i-1].Text))
			if ch.Start > prevEnd {
				t.Errorf("gap between chunk %d and %d", i-1, i)
			}
		}
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	c := mustChunker(t, 10, 3)
	text := strings.Repeat("x", 25)

	chunks := c.Split(commonModels.Document{Name: "d", Text: text}, commonModels.CorpusRegulations)
	if len(chunks) < 3 {
		t.Fatalf("expected hard cuts, got %d chunks", len(chunks))
	}
	if chunks[0].Text != strings.Repeat("x", 10) {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
}

// Chunks are exact substrings in order, and anything no chunk covers is whitespace.
func TestSplit_ReconstructionProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 80).Draw(rt, "size")
		overlap := rapid.IntRange(0, size-1).Draw(rt, "overlap")
		words := rapid.SliceOf(rapid.SampledFrom([]string{
			"LDAR", "methane", "flare", "é", "spill", " ", " ", "\n", "\n\n", ". ", "monitoring", "x",
		})).Draw(rt, "words")
		text := strings.Join(words, "")

		c, err := NewChunker(size, overlap)
		if err != nil {
			rt.Fatalf("NewChunker: %v", err)
		}
		chunks := c.Split(commonModels.Document{Name: "prop", Text: text}, commonModels.CorpusRegulations)
		runes := []rune(text)

		if strings.TrimSpace(text) == "" {
			if len(chunks) != 0 {
				rt.Fatalf("expected no chunks for blank text")
			}
			return
		}

		covered := make([]bool, len(runes))
		lastStart := -1
		for i, ch := range chunks {
			r := []rune(ch.Text)
			if len(r) > size {
				rt.Fatalf("chunk %d longer than size: %d > %d", i, len(r), size)
			}
			if ch.ChunkIndex != i {
				rt.Fatalf("chunk %d has index %d", i, ch.ChunkIndex)
			}
			if ch.Start <= lastStart {
				rt.Fatalf("chunk %d out of order", i)
			}
			lastStart = ch.Start
			if string(runes[ch.Start:ch.Start+len(r)]) != ch.Text {
				rt.Fatalf("chunk %d is not the source substring", i)
			}
			for j := ch.Start; j < ch.Start+len(r); j++ {
				covered[j] = true
			}
		}
		for i, ok := range covered {
			if !ok && !unicode.IsSpace(runes[i]) {
				rt.Fatalf("rune %d (%q) dropped", i, runes[i])
			}
		}
	})
}

func TestIngestDocument(t *testing.T) {
	c := mustChunker(t, 500, 200)
	ctx := context.Background()

	t.Run("stores chunks in the requested corpus", func(t *testing.T) {
		store := &mockUpserter{onUpsert: func(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error) {
			if corpus != commonModels.CorpusUploads {
				t.Errorf("corpus = %s", corpus)
			}
			return len(chunks), nil
		}}
		n, err := IngestDocument(ctx, commonModels.Document{Name: "a.pdf", Text: "Flare routing"}, commonModels.CorpusUploads, c, store)
		if err != nil || n != 1 {
			t.Errorf("IngestDocument = %d, %v", n, err)
		}
	})

	t.Run("empty document stores nothing", func(t *testing.T) {
		store := &mockUpserter{}
		_, err := IngestDocument(ctx, commonModels.Document{Name: "empty.pdf"}, commonModels.CorpusUploads, c, store)
		if !errors.Is(err, ErrNoContent) {
			t.Errorf("expected ErrNoContent, got %v", err)
		}
		if store.calls != 0 {
			t.Errorf("expected no upsert calls, got %d", store.calls)
		}
	})

	t.Run("upsert error is wrapped", func(t *testing.T) {
		store := &mockUpserter{onUpsert: func(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error) {
			return 0, errors.New("quota")
		}}
		_, err := IngestDocument(ctx, commonModels.Document{Name: "a.pdf", Text: "text"}, commonModels.CorpusUploads, c, store)
		if err == nil || !strings.Contains(err.Error(), "quota") {
			t.Errorf("expected wrapped quota error, got %v", err)
		}
	})
}

func TestIngestFile_TextDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Spill reporting within 24 hours."), 0o644); err != nil {
		t.Fatal(err)
	}
	store := &mockUpserter{}
	n, err := IngestFile(context.Background(), path, "", commonModels.CorpusUploads, mustChunker(t, 500, 200), store)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 chunk, got %d", n)
	}
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "A.PDF", "notes.txt", "c.Pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := FindPDFs(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "A.PDF,b.pdf,c.Pdf" {
		t.Errorf("unexpected files %v", names)
	}
}

func TestBatchIngest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	load := func(path string, name string) (commonModels.Document, error) {
		switch name {
		case "a.pdf":
			return commonModels.Document{Name: name, Text: "Quarterly LDAR surveys are required."}, nil
		case "b.pdf":
			return commonModels.Document{Name: name}, nil
		default:
			return commonModels.Document{}, errors.New("corrupt pdf")
		}
	}

	store := &mockUpserter{}
	var out bytes.Buffer
	summary, err := batchIngest(context.Background(), dir, mustChunker(t, 500, 200), store, &out, load)
	if err != nil {
		t.Fatalf("batchIngest: %v", err)
	}

	if summary.TotalChunks != 1 || len(summary.Files) != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if !summary.Files[1].Skipped || summary.Files[2].Err == "" {
		t.Errorf("expected skip and failure recorded: %+v", summary.Files)
	}
	printed := out.String()
	for _, want := range []string{
		"Upserted 1 chunks from a.pdf",
		"Skipped (no content): b.pdf",
		"Failed c.pdf",
		"Completed. Total chunks upserted: 1",
	} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q:\n%s", want, printed)
		}
	}
}

func TestBatchIngest_NoPDFs(t *testing.T) {
	var out bytes.Buffer
	store := &mockUpserter{}
	summary, err := BatchIngestDirectory(context.Background(), t.TempDir(), mustChunker(t, 500, 200), store, &out)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.TotalChunks != 0 || store.calls != 0 {
		t.Errorf("expected nothing ingested: %+v", summary)
	}
	if !strings.Contains(out.String(), "No PDF files found") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBatchIngest_MissingDirectory(t *testing.T) {
	var out bytes.Buffer
	store := &mockUpserter{}
	summary, err := BatchIngestDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), mustChunker(t, 500, 200), store, &out)
	if err != nil {
		t.Fatalf("missing directory should not fail the batch: %v", err)
	}
	if len(summary.Files) != 0 || summary.TotalChunks != 0 || store.calls != 0 {
		t.Errorf("expected an empty summary, got %+v after %d upserts", summary, store.calls)
	}
	if !strings.Contains(out.String(), "No PDF files found") {
		t.Errorf("expected no-PDF notice, got %q", out.String())
	}
}

func TestBatchIngest_UnreadableDirectory(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "file.pdf")
	if err := os.WriteFile(notDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := BatchIngestDirectory(context.Background(), notDir, mustChunker(t, 500, 200), &mockUpserter{}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error when the path is not a directory")
	}
}

func TestJoinPages(t *testing.T) {
	got := joinPages([]rawPage{{1, " one "}, {2, "  "}, {3, "three"}})
	if got != "one\n\nthree" {
		t.Errorf("joinPages = %q", got)
	}
}
