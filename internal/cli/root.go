// Package cli is the view layer: a cobra command tree over the state
// containers in internal/. Commands trigger operations, the managers
// fold results into state, and the formatter renders it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags plus the lazily constructed App
// shared by all commands in one invocation.
type RootOptions struct {
	ConfigPath string
	Format     string
	Verbose    bool

	app *App
}

// App builds the application container on first use.
func (o *RootOptions) App() (*App, error) {
	if o.app != nil {
		return o.app, nil
	}
	app, err := newApp(o)
	if err != nil {
		return nil, err
	}
	o.app = app
	return app, nil
}

// NewRootCommand creates the root command for the shopfront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "shopfront",
		Short:         "Storefront client",
		Long:          "Command-line storefront: browse products, manage a cart, check out and review orders against the shop backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newVerifyOTPCommand(opts))
	cmd.AddCommand(newResendOTPCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newCartCommand(opts))
	cmd.AddCommand(newOrdersCommand(opts))

	return cmd
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
