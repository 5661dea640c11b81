package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Render a dialogue tree as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the dialogue file. With
--session the diagram highlights the nodes that walk has visited and
the node it is currently on.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("output")
		sessionID, _ := cmd.Flags().GetString("session")

		if err := renderGraph(cmd, args[0], out, sessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("output", "o", "", "write the diagram to a file instead of stdout")
	graphCmd.Flags().StringP("session", "s", "", "overlay the walk state of a stored session")
}

func renderGraph(cmd *cobra.Command, path, out, sessionID string) error {
	t, err := loadTree(path)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if sessionID != "" {
		store, closeStore, err := newStore()
		if err != nil {
			return err
		}
		defer closeStore()

		state, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("load session %q: %w", sessionID, err)
		}
		overlay = graph.OverlayFromState(state)
	}

	diagram := graph.Mermaid(t, overlay)
	if out == "" {
		fmt.Print(diagram)
		return nil
	}
	return os.WriteFile(out, []byte(diagram), 0o644)
}
