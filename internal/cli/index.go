package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srclens/srclens/internal/index"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the structural index for the current workspace",
	Long: `Index scans the workspace for Java, TypeScript and Python sources and
builds an in-memory structural index of endpoints, services, models and
controllers.

Examples:
  # Index the current directory
  srclens index

  # Index without progress output
  srclens index --quiet

  # Keep running and reindex files as they change
  srclens index --watch
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex incrementally")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	progress := NewCLIProgressReporter(quietFlag)

	manager, resultCache, err := openWorkspace(ctx, progress)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return err
	}
	defer closeWorkspace(manager, resultCache)

	if !watchFlag {
		return nil
	}

	watcher, err := index.NewWatcher(manager, manager.Root())
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	if !quietFlag {
		log.Println("Watching for changes. Press Ctrl+C to stop.")
	}
	<-ctx.Done()
	return nil
}
