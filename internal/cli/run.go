package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/triage"
)

var (
	runOut  string
	runJSON bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Triage a document and print its compliance report",
	Long: `Classifies the document, stores it when relevant and runs the
retrieval, gap analysis and report agents. The report goes to stdout
or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the report to this file")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(runCmd)
}

func runTriage(cmd *cobra.Command, args []string) error {
	doc, err := ingest.LoadDocument(args[0], "")
	if err != nil {
		return err
	}
	svc, cleanup, err := services(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()
	if svc.Triager == nil {
		return errors.New("triage pipeline not configured")
	}

	res, err := svc.Triager.Triage(cmd.Context(), doc)
	if err != nil && res.Outcome != jobModel.OutcomeAnalysisFailed {
		return fmt.Errorf("triage failed: %w", err)
	}

	if runJSON {
		if err := outputResultJSON(cmd, res); err != nil {
			return err
		}
	} else {
		outputResult(cmd, res)
	}

	if runOut != "" && res.Report != "" {
		if err := os.WriteFile(runOut, []byte(res.Report), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		cmd.Printf("Report written to %s\n", runOut)
	}
	return err
}

func outputResultJSON(cmd *cobra.Command, res triage.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResult(cmd *cobra.Command, res triage.Result) {
	cmd.Printf("Document:  %s\n", res.DocumentName)
	cmd.Printf("Relevance: %s\n", res.Relevance)
	cmd.Printf("Outcome:   %s\n", res.Outcome)
	if res.ChunksStored > 0 {
		cmd.Printf("Chunks:    %d\n", res.ChunksStored)
	}
	if res.Error != "" {
		cmd.Printf("Error:     %s\n", res.Error)
	}
	if res.Report != "" && runOut == "" {
		cmd.Println()
		cmd.Println(res.Report)
	}
}
