package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comalice/behaviortreex/tank"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the behavior profile catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, p := range tank.Profiles() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", int(p), p, p.Description())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
