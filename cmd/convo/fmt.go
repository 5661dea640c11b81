package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo/pkg/codec"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a dialogue file in canonical form",
	Long: `Parses the file and re-emits it in the canonical encoding: nodes in
their original order, minimal link forms where name and target agree,
and normalized quoting. Prints to stdout unless --write is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		write, _ := cmd.Flags().GetBool("write")

		if err := formatFile(args[0], write); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolP("write", "w", false, "rewrite the file in place instead of printing")
}

func formatFile(path string, write bool) error {
	t, err := loadTree(path)
	if err != nil {
		return err
	}

	if write {
		return codec.EncodeFile(t, path)
	}

	out, err := codec.Encode(t)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
