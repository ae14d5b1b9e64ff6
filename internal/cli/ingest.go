package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
)

var (
	ingestDir  string
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest regulation PDFs into the vector store",
	Long: `Chunks and embeds every PDF in the regulations directory into the
regulations corpus. Files that fail are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", config.DefaultRegulationsDir, "directory of regulation PDFs")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := services(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	dir := ingestDir
	if !cmd.Flags().Changed("dir") && svc.RegulationsDir != "" {
		dir = svc.RegulationsDir
	}

	summary, err := ingest.BatchIngestDirectory(cmd.Context(), dir, svc.Chunker, svc.Store, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if ingestJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
	}
	return nil
}
