package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the hv command tree.
func NewRootCmd(app *App) *cobra.Command {
	app.setDefaults()

	root := &cobra.Command{
		Use:           "hv",
		Short:         "Personal developer toolbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.AddCommand(newAICmd(app))
	root.AddCommand(newVersionCmd(app))
	return root
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hv version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hv %s\n", app.Version)
		},
	}
}
