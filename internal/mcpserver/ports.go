package mcpserver

import (
	"context"
	"errors"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/triage"
)

var ErrMissingSearch = errors.New("mcp: regulation search is required")

type Searcher interface {
	Search(ctx context.Context, query string, matchCount int) ([]commonModels.SearchResult, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) (commonModels.Relevance, error)
}

type Triager interface {
	Triage(ctx context.Context, doc commonModels.Document) (triage.Result, error)
}

// Ports are the services exposed as tools. Only Search is mandatory; the
// agent backed tools are registered when their port is set.
type Ports struct {
	Search     Searcher
	Classifier Classifier
	Triager    Triager
}

func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearch
	}
	return nil
}
