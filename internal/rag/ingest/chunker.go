package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// A raw rune cut is used when none of them fits the window.
var separators = []string{"\n\n", "\n", ". ", " "}

type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size int, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split windows the document text into chunks of at most size runes.
// Empty or whitespace-only text yields no chunks.
func (c *Chunker) Split(doc commonModels.Document, corpus commonModels.CorpusTag) []commonModels.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}
	runes := []rune(doc.Text)
	n := len(runes)

	var chunks []commonModels.Chunk
	pos := 0
	for pos < n {
		end := pos + c.size
		if end >= n {
			end = n
		} else {
			end = c.cutPoint(runes, pos, end)
		}

		piece := string(runes[pos:end])
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, commonModels.Chunk{
				Id:         utils.GetDeterministicUUID(string(corpus), doc.Name, piece),
				Text:       piece,
				Corpus:     corpus,
				SourceName: doc.Name,
				SourcePath: doc.Path,
				ChunkIndex: len(chunks),
				Start:      pos,
			})
		}
		if end == n {
			break
		}
		pos = c.nextStart(runes, pos, end)
	}
	return chunks
}

// cutPoint returns the end of the window [pos, limit). The cut lands right after
// the last separator that still leaves more than overlap runes in the window,
// so the following window always starts past pos.
func (c *Chunker) cutPoint(runes []rune, pos int, limit int) int {
	window := string(runes[pos:limit])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := pos + len([]rune(window[:idx])) + len([]rune(sep))
		if cut-pos > c.overlap {
			return cut
		}
	}
	return limit
}

func (c *Chunker) nextStart(runes []rune, pos int, end int) int {
	if c.overlap == 0 {
		return end
	}
	start := end - c.overlap
	if start <= pos {
		start = pos + 1
	}
	//avoid starting the overlap mid word
	for i := start; i < end-1; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return start
}
