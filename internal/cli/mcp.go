package cli

import (
	"github.com/spf13/cobra"

	"github.com/akolanti/ogtriage/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the triage tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := services(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcpserver.NewServer(&mcpserver.Ports{
		Search:     svc.Search,
		Classifier: svc.Classifier,
		Triager:    svc.Triager,
	})
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
