// Package cli is the operator command line: batch ingestion, one-off
// classification and triage runs, and the MCP server over stdio.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/mcpserver"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/triage"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (commonModels.Relevance, error)
}

type Triager interface {
	Triage(ctx context.Context, doc commonModels.Document) (triage.Result, error)
}

// Services are what the commands run against. Agent backed fields are nil
// when the loader was asked for ingestion only.
type Services struct {
	Chunker        *ingest.Chunker
	Store          ingest.Upserter
	Search         mcpserver.Searcher
	Classifier     Classifier
	Triager        Triager
	RegulationsDir string
	Close          func() error
}

// Loader builds Services. withAgents asks for the LLM backed pieces too.
type Loader func(ctx context.Context, withAgents bool) (*Services, error)

var loadServices Loader

var errNoLoader = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Oil & Gas compliance triage",
	Long: `Triage classifies documents for Oil & Gas regulatory relevance, stores
relevant ones and reports compliance gaps against the ingested regulations.`,
	SilenceUsage: true,
}

func SetLoader(l Loader) {
	loadServices = l
}

// Execute runs the command tree. Command output goes to stdout; cobra would
// otherwise fall back to stderr, which the binary reserves for logs.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func services(cmd *cobra.Command, withAgents bool) (*Services, func(), error) {
	if loadServices == nil {
		return nil, nil, errNoLoader
	}
	svc, err := loadServices(cmd.Context(), withAgents)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if svc.Close != nil {
			if err := svc.Close(); err != nil {
				cmd.PrintErrln("closing services:", err)
			}
		}
	}
	return svc, cleanup, nil
}
