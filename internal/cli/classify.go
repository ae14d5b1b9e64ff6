package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akolanti/ogtriage/internal/rag/ingest"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Check whether a document is relevant to Oil & Gas compliance",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	doc, err := ingest.LoadDocument(args[0], "")
	if err != nil {
		return err
	}
	svc, cleanup, err := services(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()
	if svc.Classifier == nil {
		return errors.New("classifier not configured")
	}

	rel, err := svc.Classifier.Classify(cmd.Context(), doc.Text)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	cmd.Printf("%s: %s\n", doc.Name, rel)
	return nil
}
