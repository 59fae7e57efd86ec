package main

import (
	"fmt"
	"strings"

	"github.com/rigwire/rigwire"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rigwire",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rigwire version %s\n", strings.TrimSpace(rigwire.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
