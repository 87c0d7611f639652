package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/store"
)

func (a *app) newsCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "news",
		Short: "List political news items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := catalog.FilterNews(store.Static().News(), query)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tCATEGORY\tSOURCE\tTITLE")
			for _, n := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Date, n.Category, n.Source, n.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title, content or category")
	return cmd
}
