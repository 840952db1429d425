package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/tonysxn/brobar.delivery/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, closeFetcher, err := buildScraper()
	if err != nil {
		return err
	}
	defer closeFetcher()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting brobar-menu MCP server on stdio...")

	if err := mcpserver.Serve(cfg, s); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
