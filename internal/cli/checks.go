package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
)

// CheckInfo describes one registered check.
type CheckInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewChecksCommand creates the checks command.
func NewChecksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the available checks",
		Long: `List every registered check in run order. The names are the ones accepted by
--enable/--disable and by the checks section of instal.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(rootOpts, cmd)
		},
	}
}

func runChecks(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	entries := checks.All()
	infos := make([]CheckInfo, len(entries))
	for i, e := range entries {
		infos[i] = CheckInfo{Name: e.Name, Description: e.Description}
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
	}
	return tw.Flush()
}
