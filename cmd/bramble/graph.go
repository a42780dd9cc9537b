package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/bramble/internal/presentation/graph"
	"github.com/aretw0/bramble/pkg/adapters/tabledef"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the table graph visualization",
	Long:  `Inspects a YAML table definition and outputs a Mermaid diagram (graph TD) representing its rules.`,
	Run: func(cmd *cobra.Command, args []string) {
		tablePath, _ := cmd.Flags().GetString("table")
		if !cmd.Flags().Changed("table") && len(args) > 0 {
			tablePath = args[0]
		}

		data, err := os.ReadFile(tablePath)
		if err != nil {
			fmt.Printf("Error reading table: %v\n", err)
			os.Exit(1)
		}
		def, err := tabledef.ParseDef(data)
		if err != nil {
			fmt.Printf("Error parsing table: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(def, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
