package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rigwire",
	Short: "Rigwire is a command bridge for node-graph editing environments",
	Long: `Rigwire lets external clients drive a live node-graph editing
environment over newline-delimited JSON: open assets, apply ordered
mutation batches with rollback, and query graph structure. All mutations
execute on a single owner goroutine.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
}
