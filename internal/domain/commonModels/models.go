package commonModels

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	Path                string    `json:"source_path"`
	Text                string    `json:"-"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// Chunk is the unit stored in and retrieved from the vector store.
// Start is the rune offset of Text inside the source document.
type Chunk struct {
	Id         string    `json:"chunk_id"`
	Text       string    `json:"content"`
	Corpus     CorpusTag `json:"corpus"`
	SourceName string    `json:"source_pdf"`
	SourcePath string    `json:"source_path"`
	ChunkIndex int       `json:"chunk_index"`
	Start      int       `json:"start"`
}

type SearchResult struct {
	Content    string    `json:"content"`
	SourceName string    `json:"source"`
	SourcePath string    `json:"source_path,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	Corpus     CorpusTag `json:"corpus"`
	Similarity float32   `json:"similarity"`
}

// Citation is the short reference agents use when quoting a passage.
func (r SearchResult) Citation() string {
	return fmt.Sprintf("[%s#%d]", r.SourceName, r.ChunkIndex)
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

type CorpusTag string

const (
	CorpusRegulations CorpusTag = "regulations"
	CorpusUploads     CorpusTag = "uploads"
)

type Relevance string

const (
	Relevant    Relevance = "Relevant"
	NotRelevant Relevance = "NotRelevant"
)

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

var ErrInvalidSeverity = errors.New("invalid severity")

// AllSeverities is the closed set used for response schemas.
var AllSeverities = []string{string(SeverityLow), string(SeverityMedium), string(SeverityHigh)}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

type ComplianceGap struct {
	Title     string   `json:"title"`
	Citation  string   `json:"citation"`
	Severity  Severity `json:"severity"`
	Rationale string   `json:"rationale"`
}
