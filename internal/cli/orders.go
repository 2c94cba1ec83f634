package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

func newOrdersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Review order history",
	}
	cmd.AddCommand(newOrdersListCommand(opts))
	cmd.AddCommand(newOrdersShowCommand(opts))
	return cmd
}

func writeOrderTable(w io.Writer, list []domain.Order) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No orders.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCTS\tTOTAL\tSTATUS\tDATE")
	for _, o := range list {
		date := ""
		if !o.CreatedAt.IsZero() {
			date = o.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t%s\n", o.ID, len(o.Products), o.TotalPrice, o.Status, date)
	}
	tw.Flush()
}

func newOrdersListCommand(opts *RootOptions) *cobra.Command {
	var purchases, sales bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			sess := app.Auth.Session()
			if !sess.LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to list orders")
			}
			if err := app.Orders.Fetch(cmd.Context()); err != nil {
				return app.rejection(app.Tracker.State(ops.FetchOrders).Err, err)
			}

			list := app.Orders.Orders()
			switch {
			case purchases:
				list = app.Orders.Purchases(sess.UserID())
			case sales:
				list = app.Orders.Sales(sess.UserID())
			}
			return formatter(cmd, opts).Print(list, func(w io.Writer) {
				writeOrderTable(w, list)
			})
		},
	}

	cmd.Flags().BoolVar(&purchases, "purchases", false, "only orders you placed")
	cmd.Flags().BoolVar(&sales, "sales", false, "only orders containing your products")
	cmd.MarkFlagsMutuallyExclusive("purchases", "sales")
	return cmd
}

func newOrdersShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if !app.Auth.Session().LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to show orders")
			}
			order, err := app.Orders.FetchByID(cmd.Context(), args[0])
			if err != nil {
				return app.rejection("fetching order", err)
			}
			return formatter(cmd, opts).Print(order, func(w io.Writer) {
				fmt.Fprintf(w, "Order %s (%s)\n", order.ID, order.Status)
				for _, p := range order.Products {
					name := p.Name
					if name == "" {
						name = p.ID
					}
					fmt.Fprintf(w, "  - %s\n", name)
				}
				fmt.Fprintf(w, "total: %.2f\n", order.TotalPrice)
			})
		},
	}
}
