package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of paper-embeddings",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paper-embeddings %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
