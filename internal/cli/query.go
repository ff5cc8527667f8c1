package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <file> <line>",
	Short: "Show the innermost element at a file position",
	Long: `Query builds the workspace index and prints the innermost indexed element
whose span contains the given 1-based line, as JSON.

Examples:
  srclens query src/main/java/OrderController.java 42
  srclens query api/users.py 7
`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return fmt.Errorf("line must be a positive integer, got %q", args[1])
	}

	manager, resultCache, err := openWorkspace(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	el := manager.QueryAt(args[0], line)
	if el == nil {
		fmt.Println("null")
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(el)
}
