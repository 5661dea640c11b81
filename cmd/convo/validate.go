package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo/pkg/tree"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a dialogue file for structural problems",
	Long: `Parses the file and validates the tree: the root must exist, every node
needs dialogue, and with the default checks every link must land on a real
node and every node must be reachable from the root. Findings are listed
one per line and the exit code is 1 when any are found.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkLinks, _ := cmd.Flags().GetBool("check-links")
		checkReachability, _ := cmd.Flags().GetBool("check-reachability")

		t, err := loadTree(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var opts []tree.ValidateOption
		if checkLinks {
			opts = append(opts, tree.WithLinkCheck())
		}
		if checkReachability {
			opts = append(opts, tree.WithReachabilityCheck())
		}

		if err := t.Validate(opts...); err != nil {
			findings := tree.ValidationErrors(err)
			if findings == nil {
				findings = []error{err}
			}
			fmt.Fprintf(os.Stderr, "%s: %d problem(s)\n", args[0], len(findings))
			for _, f := range findings {
				fmt.Fprintf(os.Stderr, "  - %v\n", f)
			}
			os.Exit(1)
		}

		fmt.Printf("%s: ok (%d nodes)\n", args[0], t.Len())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("check-links", true, "require every link target to exist")
	validateCmd.Flags().Bool("check-reachability", true, "require every node to be reachable from the root")
}
