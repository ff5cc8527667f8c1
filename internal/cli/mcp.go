package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srclens/srclens/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workspace index over the Model Context Protocol",
	Long: `Mcp builds the workspace index, then serves it to MCP clients on stdio.
A file watcher keeps the index current while serving.

Tools exposed:
  srclens_query     innermost element at a file position
  srclens_elements  all elements in a file
  srclens_search    full-text search over the index
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	manager, resultCache, err := openWorkspace(ctx, NewCLIProgressReporter(true))
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	srv, err := mcp.NewServer(manager)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	return srv.Serve(ctx)
}
