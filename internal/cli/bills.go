package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/store"
)

func (a *app) billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List and inspect bills",
	}

	var (
		query  string
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		Long: `List bills sorted by id descending, optionally filtered.

Example:
  billctl bills list
  billctl bills list --query "data protection"
  billctl bills list --source remote --bills-url https://example.org/bills.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			bills := catalog.FilterBills(st.Bills(), query)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), bills)
			}
			return printBills(cmd.OutOrStdout(), bills)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter by title, ministry or id")
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one bill as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			bill, ok := st.Bill(args[0])
			if !ok {
				return fmt.Errorf("bill %s not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), bill)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func (a *app) loadStore(ctx context.Context) (*store.Store, error) {
	s, err := a.settings()
	if err != nil {
		return nil, err
	}

	seed := store.Static()
	switch s.Source {
	case "", "static":
		return seed, nil
	case "remote":
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, s.Timeout)
		defer cancel()
		bills := store.LoadBills(ctx, store.NewRemoteLoader(s.BillsURL, s.Timeout, a.log), a.log)
		return store.New(bills, seed.News()), nil
	default:
		return nil, fmt.Errorf("unknown source %q (supported: static, remote)", s.Source)
	}
}

func printBills(w io.Writer, bills []models.Bill) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tMINISTRY\tTITLE")
	for _, b := range bills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Status, b.Ministry, b.Title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
