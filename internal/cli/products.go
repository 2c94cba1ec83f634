package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/ops"
)

func newProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage products",
	}
	cmd.AddCommand(newProductsListCommand(opts))
	cmd.AddCommand(newProductsShowCommand(opts))
	cmd.AddCommand(newProductsMineCommand(opts))
	cmd.AddCommand(newProductsAddCommand(opts))
	cmd.AddCommand(newProductsUpdateCommand(opts))
	cmd.AddCommand(newProductsRemoveCommand(opts))
	return cmd
}

func writeProductTable(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", p.ID, p.Name, p.Price)
	}
	tw.Flush()
}

func newProductsListCommand(opts *RootOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if err := app.Catalog.FetchPage(cmd.Context(), page); err != nil {
				return app.rejection(app.Tracker.State(ops.FetchProducts).Err, err)
			}

			products := app.Catalog.Products()
			pagination := app.Catalog.Pagination()
			payload := map[string]any{"products": products, "pagination": pagination}
			return formatter(cmd, opts).Print(payload, func(w io.Writer) {
				writeProductTable(w, products)
				fmt.Fprintf(w, "page %d of %d (%d products)\n", pagination.Page, pagination.Pages, pagination.Total)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "catalog page")
	return cmd
}

func newProductsShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			p, err := app.Catalog.FetchProduct(cmd.Context(), args[0])
			if err != nil {
				return app.rejection("fetching product", err)
			}
			return formatter(cmd, opts).Print(p, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", p.Name)
				if p.Description != "" {
					fmt.Fprintf(w, "%s\n", p.Description)
				}
				fmt.Fprintf(w, "price: %.2f\nid: %s\n", p.Price, p.ID)
			})
		},
	}
}

func newProductsMineCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own product listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if !app.Auth.Session().LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to list your products")
			}
			if err := app.Catalog.FetchMine(cmd.Context()); err != nil {
				return app.rejection("fetching your products", err)
			}
			mine := app.Catalog.Mine()
			return formatter(cmd, opts).Print(mine, func(w io.Writer) {
				writeProductTable(w, mine)
			})
		},
	}
}

func newProductsAddCommand(opts *RootOptions) *cobra.Command {
	var p domain.Product

	cmd := &cobra.Command{
		Use:   "add",
		Short: "List a new product for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if !app.Auth.Session().LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to sell products")
			}
			created, err := app.Catalog.Create(cmd.Context(), p)
			if err != nil {
				return app.rejection("creating product", err)
			}
			return formatter(cmd, opts).Print(created, func(w io.Writer) {
				fmt.Fprintf(w, "Listed %q (id %s)\n", created.Name, created.ID)
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Description, "description", "", "product description")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&p.Image, "image", "", "image URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsUpdateCommand(opts *RootOptions) *cobra.Command {
	var p domain.Product

	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Update one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if !app.Auth.Session().LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to update products")
			}
			updated, err := app.Catalog.Update(cmd.Context(), args[0], p)
			if err != nil {
				return app.rejection("updating product", err)
			}
			return formatter(cmd, opts).Print(updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %q\n", updated.Name)
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Description, "description", "", "product description")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&p.Image, "image", "", "image URL")
	return cmd
}

func newProductsRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <product-id>",
		Short: "Delete one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if !app.Auth.Session().LoggedIn() {
				return NewExitError(ExitCommandError, "you must be logged in to delete products")
			}
			if err := app.Catalog.Delete(cmd.Context(), args[0]); err != nil {
				return app.rejection("deleting product", err)
			}
			return formatter(cmd, opts).Print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}
