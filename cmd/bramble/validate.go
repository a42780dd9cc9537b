package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/bramble"
	"github.com/aretw0/bramble/pkg/adapters/tabledef"
	"github.com/aretw0/bramble/pkg/registry"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a table definition for integrity problems",
	Long:  `Loads a YAML table definition, verifies that every rule target is declared, and warns about states no rule path can reach.`,
	Run: func(cmd *cobra.Command, args []string) {
		tablePath, _ := cmd.Flags().GetString("table")
		if !cmd.Flags().Changed("table") && len(args) > 0 {
			tablePath = args[0]
		}

		// Validation only inspects the table shape, so unknown action
		// names are tolerated by resolving against a permissive registry.
		reg := permissiveRegistry(tablePath)
		rules, actions, err := tabledef.Load(tablePath, reg)
		if err != nil {
			fmt.Printf("Invalid: %v\n", err)
			os.Exit(1)
		}

		eng, err := bramble.New(rules, actions)
		if err != nil {
			fmt.Printf("Invalid: %v\n", err)
			os.Exit(1)
		}

		if unreachable := eng.Unreachable(); len(unreachable) > 0 {
			fmt.Printf("Warning: unreachable states: %v\n", unreachable)
		}
		fmt.Println("OK")
	},
}

// permissiveRegistry pre-registers every action name found in the
// definition as a no-op, so shape validation does not require the host's
// callbacks.
func permissiveRegistry(tablePath string) *registry.Registry {
	reg := registry.New()
	data, err := os.ReadFile(tablePath)
	if err != nil {
		return reg
	}
	def, err := tabledef.ParseDef(data)
	if err != nil {
		return reg
	}
	for _, s := range def.States {
		for _, name := range []string{s.OnEnter, s.OnExit} {
			if name != "" {
				reg.RegisterAction(name, nil)
			}
		}
		for _, r := range s.Rules {
			if r.Action != "" {
				reg.RegisterAction(r.Action, nil)
			}
		}
	}
	return reg
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
