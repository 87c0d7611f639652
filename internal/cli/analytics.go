package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legisdesk/bill-registry/internal/analytics"
)

func (a *app) analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "analytics [status|ministries|states]",
		Short:     "Print grouped bill counts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"status", "ministries", "states"},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			bills := st.Bills()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			switch args[0] {
			case "status":
				fmt.Fprintln(tw, "STATUS\tCOUNT")
				for _, c := range analytics.CountByStatus(bills) {
					fmt.Fprintf(tw, "%s\t%d\n", c.Status, c.Count)
				}
			case "ministries":
				fmt.Fprintln(tw, "MINISTRY\tCOUNT")
				for _, c := range analytics.CountByMinistry(bills) {
					fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Count)
				}
			case "states":
				fmt.Fprintln(tw, "STATE\tCOUNT\tPERCENT")
				for _, c := range analytics.CountByState(bills) {
					fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.State, c.Count, c.Percent)
				}
			}
			return tw.Flush()
		},
	}
	return cmd
}
