package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtex"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qtex",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qtex version %s\n", strings.TrimSpace(qtex.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
