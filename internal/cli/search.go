package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srclens/srclens/internal/index"
)

var searchLimit int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed elements",
	Long: `Search builds the workspace index and runs a full-text query over element
names, documentation, routes and file paths.

The query string supports field scoping, e.g. 'kind:endpoint payment'.

Examples:
  srclens search "create order"
  srclens search "kind:model invoice" --limit 5
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 15, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	manager, resultCache, err := openWorkspace(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	searcher, err := index.NewSearcher(manager)
	if err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	defer searcher.Close()

	hits, err := searcher.Search(args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(hits)
}
