package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shopfront/shopfront/internal/ops"
)

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			if err := app.Auth.Login(cmd.Context(), email, password); err != nil {
				// The tracker holds the server's message verbatim.
				return NewExitError(ExitRejected, app.Tracker.State(ops.Login).Err)
			}

			sess := app.Auth.Session()
			app.selectCart()
			return formatter(cmd, opts).Print(sess.User, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (an OTP is mailed to the address)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			message, err := app.Auth.Register(cmd.Context(), name, email, password)
			if err != nil {
				return NewExitError(ExitRejected, app.Tracker.State(ops.Register).Err)
			}
			return formatter(cmd, opts).Print(map[string]string{"message": message}, func(w io.Writer) {
				fmt.Fprintln(w, message)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newVerifyOTPCommand(opts *RootOptions) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Verify the registration OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			message, err := app.Auth.VerifyOTP(cmd.Context(), email, otp)
			if err != nil {
				return NewExitError(ExitRejected, app.Tracker.State(ops.VerifyOTP).Err)
			}
			if message == "" {
				message = "Email verified. You can log in now."
			}
			return formatter(cmd, opts).Print(map[string]string{"message": message}, func(w io.Writer) {
				fmt.Fprintln(w, message)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time password from the verification email")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("otp")
	return cmd
}

func newResendOTPCommand(opts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend-otp",
		Short: "Request a fresh OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			message, err := app.Auth.ResendOTP(cmd.Context(), email)
			if err != nil {
				return NewExitError(ExitRejected, app.Tracker.State(ops.ResendOTP).Err)
			}
			if message == "" {
				message = "OTP resent"
			}
			return formatter(cmd, opts).Print(map[string]string{"message": message}, func(w io.Writer) {
				fmt.Fprintln(w, message)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			app.Auth.Logout()
			app.selectCart()
			return formatter(cmd, opts).Print(map[string]string{"message": "logged out"}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out.")
			})
		},
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App()
			if err != nil {
				return err
			}
			sess := app.Auth.Session()
			if !sess.LoggedIn() {
				return formatter(cmd, opts).Print(map[string]any{"user": nil}, func(w io.Writer) {
					fmt.Fprintln(w, "Not logged in.")
				})
			}
			return formatter(cmd, opts).Print(sess.User, func(w io.Writer) {
				fmt.Fprintf(w, "%s <%s>\n", sess.User.Name, sess.User.Email)
			})
		},
	}
}
