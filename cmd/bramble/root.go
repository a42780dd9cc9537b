package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bramble",
	Short: "Bramble is a speculative state automaton engine",
	Long:  `Bramble drives guarded state tables either deterministically (first match wins) or speculatively, racing concurrent branches until one commits.`,
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
	rootCmd.PersistentFlags().StringP("table", "t", "table.yaml", "Path to the YAML table definition")
}
