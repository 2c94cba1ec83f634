package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

func newCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
		Long:  "Manage the shopping cart. Guests get a locally persisted cart; logged-in users work against the server cart.",
	}
	cmd.AddCommand(newCartShowCommand(opts))
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartUpdateCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))
	cmd.AddCommand(newCartCheckoutCommand(opts))
	return cmd
}

func writeCart(w io.Writer, items []domain.CartItem, totalItems int, totalPrice float64) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%.2f\n", it.ProductID, it.Name, it.Price, it.Quantity, it.Subtotal())
	}
	tw.Flush()
	fmt.Fprintf(w, "%d items, total %.2f\n", totalItems, totalPrice)
}

func printCart(cmd *cobra.Command, opts *RootOptions, app *App) error {
	items := app.Cart.Items()
	totalItems := app.Cart.TotalItems()
	totalPrice := app.Cart.TotalPrice()
	payload := map[string]any{
		"items":      items,
		"totalItems": totalItems,
		"totalPrice": totalPrice,
	}
	return formatter(cmd, opts).Print(payload, func(w io.Writer) {
		writeCart(w, items, totalItems, totalPrice)
	})
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			err = app.Tracker.Track(ops.FetchCart, func() error {
				return app.Cart.Refresh(cmd.Context())
			})
			if err != nil {
				return app.rejection(app.Tracker.State(ops.FetchCart).Err, err)
			}
			return printCart(cmd, opts, app)
		},
	}
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if args[0] == "" {
				return NewExitError(ExitCommandError, "product id must not be empty")
			}

			// Resolve the product first: it validates the reference
			// and gives the guest cart its display fields.
			product, err := app.Catalog.FetchProduct(cmd.Context(), args[0])
			if err != nil {
				return app.rejection("product not found", err)
			}

			err = app.Tracker.Track(ops.AddItem, func() error {
				return app.Cart.AddItem(cmd.Context(), product)
			})
			if err != nil {
				return app.rejection(app.Tracker.State(ops.AddItem).Err, err)
			}
			return printCart(cmd, opts, app)
		},
	}
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line item from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			err = app.Tracker.Track(ops.RemoveItem, func() error {
				return app.Cart.RemoveItem(cmd.Context(), args[0])
			})
			if err != nil {
				return app.rejection(app.Tracker.State(ops.RemoveItem).Err, err)
			}
			return printCart(cmd, opts, app)
		},
	}
}

func newCartUpdateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a line item (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}

			err = app.Tracker.Track(ops.UpdateItem, func() error {
				return app.Cart.UpdateQuantity(cmd.Context(), args[0], quantity)
			})
			if err != nil {
				return app.rejection(app.Tracker.State(ops.UpdateItem).Err, err)
			}
			return printCart(cmd, opts, app)
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if err := app.Cart.Clear(cmd.Context()); err != nil {
				return app.rejection("clearing cart", err)
			}
			return printCart(cmd, opts, app)
		},
	}
}

func newCartCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Check the cart out into an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			// Checkout needs an authenticated server cart; this is
			// rejected before any network call.
			if !app.Auth.Session().LoggedIn() || app.Remote == nil {
				return NewExitError(ExitCommandError, "you must be logged in to check out")
			}

			var order domain.Order
			err = app.Tracker.Track(ops.Checkout, func() error {
				var err error
				order, err = app.Remote.Checkout(cmd.Context())
				return err
			})
			if err != nil {
				return app.rejection(app.Tracker.State(ops.Checkout).Err, err)
			}

			return formatter(cmd, opts).Print(order, func(w io.Writer) {
				if order.ID == "" {
					fmt.Fprintln(w, "Order placed.")
					return
				}
				fmt.Fprintf(w, "Order %s placed: %d products, total %.2f, status %s\n",
					order.ID, len(order.Products), order.TotalPrice, order.Status)
			})
		},
	}
}
