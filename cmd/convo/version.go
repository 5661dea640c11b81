package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the convo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("convo version %s\n", strings.TrimSpace(convo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
