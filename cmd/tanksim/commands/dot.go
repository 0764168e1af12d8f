package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/behaviortreex/internal/config"
	"github.com/comalice/behaviortreex/internal/printer"
	"github.com/comalice/behaviortreex/internal/production"
	"github.com/comalice/behaviortreex/internal/sim"
	"github.com/comalice/behaviortreex/tank"
)

var dotJSON bool

var dotCmd = &cobra.Command{
	Use:   "dot PROFILE",
	Short: "Print the tree of a behavior profile",
	Long: `Build a fresh tree for PROFILE (a catalog name or numeric id) and print it as
Graphviz DOT, or as JSON with --json.

Examples:
  tanksim dot tracker | dot -Tsvg > tracker.svg
  tanksim dot 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDot,
}

func init() {
	dotCmd.Flags().BoolVar(&dotJSON, "json", false, "Print the tree as JSON")
	rootCmd.AddCommand(dotCmd)
}

func runDot(cmd *cobra.Command, args []string) error {
	p := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	profile, err := tank.ParseProfile(args[0])
	if err != nil {
		return p.Error(
			"unknown profile",
			err.Error(),
			[]string{"List the catalog:\n  tanksim profiles"},
		)
	}

	body := sim.NewWorld(sim.SettingsFrom(config.Default().Simulation)).Spawn(profile.String(), sim.Pose{})
	root, err := tank.Build(profile, body, body, tank.WithID(profile.String()), tank.WithLogger(newLogger(cmd.ErrOrStderr())))
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", profile, err)
	}

	v := &production.DOTVisualizer{}
	if dotJSON {
		data, err := v.ExportJSON(root)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", profile, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), v.Export(root))
	return nil
}
