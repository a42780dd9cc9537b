package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/bramble"
	"github.com/aretw0/bramble/internal/logging"
	"github.com/aretw0/bramble/internal/presentation/tui"
	"github.com/aretw0/bramble/pkg/adapters/tabledef"
	"github.com/aretw0/bramble/pkg/domain"
	"github.com/aretw0/bramble/pkg/registry"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a table definition through the engine",
	Long:  `Loads a YAML table definition and advances it step by step, deterministically or speculatively, printing each settled outcome.`,
	Run: func(cmd *cobra.Command, args []string) {
		tablePath, _ := cmd.Flags().GetString("table")
		if !cmd.Flags().Changed("table") && len(args) > 0 {
			tablePath = args[0]
		}
		augmented, _ := cmd.Flags().GetBool("augmented")
		maxBranches, _ := cmd.Flags().GetInt64("max-branches")
		steps, _ := cmd.Flags().GetInt("steps")
		sets, _ := cmd.Flags().GetStringArray("set")
		debug, _ := cmd.Flags().GetBool("debug")

		if err := runTable(tablePath, augmented, maxBranches, steps, sets, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runTable(tablePath string, augmented bool, maxBranches int64, steps int, sets []string, debug bool) error {
	regs := domain.NewMapRegisters()
	for _, kv := range sets {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return fmt.Errorf("invalid --set %q (expected key=value)", kv)
		}
		regs[key] = value
	}

	tracer := tui.NewTracer()

	reg := registry.New()
	reg.RegisterAction("trace", func(ctx context.Context, h domain.Handle) error {
		tracer.Enter(h.State())
		return nil
	})

	rules, actions, err := tabledef.Load(tablePath, reg)
	if err != nil {
		return err
	}

	logger := logging.NewNop()
	if debug {
		logger = logging.New(slog.LevelDebug)
	}

	eng, err := bramble.New(rules, actions,
		bramble.WithRegisters(regs),
		bramble.WithAugmented(augmented),
		bramble.WithMaxOutstanding(maxBranches),
		bramble.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i := 1; i <= steps; i++ {
		res, err := eng.Step(ctx)
		if err != nil {
			tracer.Fail(err)
			return err
		}
		tracer.Step(i, res)
		if len(rules[res.State]) == 0 {
			// Terminal state: nothing left to drive.
			break
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("augmented", "a", false, "Explore eligible branches concurrently instead of taking the first match")
	runCmd.Flags().Int64("max-branches", bramble.DefaultMaxOutstanding, "Bound on concurrently running speculative branches")
	runCmd.Flags().IntP("steps", "n", 16, "Maximum evaluation passes to drive")
	runCmd.Flags().StringArray("set", nil, "Initial register values (key=value, repeatable)")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
}
