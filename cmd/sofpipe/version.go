package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time through -ldflags.
var version = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sofpipe version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sofpipe", version)
	},
}
