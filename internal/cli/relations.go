package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srclens/srclens/internal/index"
)

// relationsCmd represents the relations command
var relationsCmd = &cobra.Command{
	Use:   "relations [model]",
	Short: "Show relationships between indexed models",
	Long: `Relations builds the workspace index and prints the model relationship
graph derived from extracted relationship descriptors.

With no argument every edge is listed. With a model name, its outgoing
and incoming edges are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelations,
}

func init() {
	rootCmd.AddCommand(relationsCmd)
}

func runRelations(cmd *cobra.Command, args []string) error {
	manager, resultCache, err := openWorkspace(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeWorkspace(manager, resultCache)

	graph := index.BuildModelGraph(manager)

	if len(args) == 0 {
		edges := graph.Edges()
		if len(edges) == 0 {
			fmt.Println("No model relationships found.")
			return nil
		}
		for _, e := range edges {
			fmt.Printf("%s -[%s]-> %s\n", e.From, e.Kind, e.To)
		}
		return nil
	}

	model := args[0]
	out := graph.Outgoing(model)
	in := graph.Incoming(model)
	if len(out) == 0 && len(in) == 0 {
		fmt.Printf("No relationships found for %s.\n", model)
		return nil
	}
	for _, e := range out {
		fmt.Printf("%s -[%s]-> %s\n", e.From, e.Kind, e.To)
	}
	for _, e := range in {
		fmt.Printf("%s <-[%s]- %s\n", e.To, e.Kind, e.From)
	}
	return nil
}
