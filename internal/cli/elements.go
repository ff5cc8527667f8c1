package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/srclens/srclens/internal/elements"
)

// elementsCmd represents the elements command
var elementsCmd = &cobra.Command{
	Use:   "elements <file>",
	Short: "List all indexed elements in a file",
	Long: `Elements builds the workspace index and prints every element extracted
from the given file as a JSON array, ordered by start line.`,
	Args: cobra.ExactArgs(1),
	RunE: runElements,
}

func init() {
	rootCmd.AddCommand(elementsCmd)
}

func runElements(cmd *cobra.Command, args []string) error {
	manager, resultCache, err := openWorkspace(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	els := manager.ElementsIn(args[0])
	if els == nil {
		els = []elements.Element{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(els)
}
