package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "srclens",
	Short: "srclens - structural source code indexing",
	Long: `srclens builds a structural index of a workspace without compiling it.

It scans Java, TypeScript and Python sources for endpoints, services,
models and controllers using lightweight lexical extraction, and answers
position and search queries against the resulting index.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
