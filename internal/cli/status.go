package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the workspace index",
	Long: `Status builds the workspace index and prints aggregate counts plus any
files that failed to scan.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, resultCache, err := openWorkspace(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	stats := manager.Counts()

	fmt.Printf("Session:    %s\n", manager.SessionID())
	fmt.Printf("Root:       %s\n", manager.Root())
	fmt.Printf("Extensions: %s\n", strings.Join(manager.SupportedExtensions(), ", "))
	fmt.Println()
	fmt.Printf("Files:      %d\n", stats.FilesScanned)
	fmt.Printf("Endpoints:  %d\n", stats.Endpoints)
	fmt.Printf("Services:   %d\n", stats.Services)
	fmt.Printf("Models:     %d\n", stats.Models)
	fmt.Printf("Containers: %d\n", stats.Containers)

	failed := manager.FailedFiles()
	if len(failed) == 0 {
		return nil
	}

	paths := make([]string, 0, len(failed))
	for p := range failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Printf("\nFailed files (%d):\n", len(paths))
	for _, p := range paths {
		fmt.Printf("  %s: %s\n", p, failed[p])
	}
	return nil
}
