package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/cosmetics-storefront/api"
	"github.com/aluiziolira/cosmetics-storefront/catalog"
	"github.com/aluiziolira/cosmetics-storefront/config"
	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/session"
)

func (a *app) sessionFor(admin bool) *session.Session {
	if admin {
		return a.adminSession
	}
	return a.session
}

func envPassword() (string, bool) {
	return config.EnvString(config.EnvPrefix + "PASSWORD")
}

func (a *app) loginCommand() *cobra.Command {
	var (
		email    string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if password == "" {
				if v, ok := envPassword(); ok {
					password = v
				}
			}
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return reportLogin(cmd, err)
			}
			if err := a.sessionFor(admin).Set(cmd.Context(), res.Token, res.UserID); err != nil {
				return fail("saving session", err)
			}
			name := email
			if res.User != nil && res.User.Name != "" {
				name = res.User.Name
			}
			fmt.Fprintf(out, "Welcome, %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or STOREFRONT_PASSWORD)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Store the token as the back-office session")
	return cmd
}

// reportLogin prints the backend's rejection message rather than a login
// prompt, which would be circular here.
func reportLogin(cmd *cobra.Command, err error) error {
	var authErr api.AuthError
	var transportErr api.TransportError
	switch {
	case errors.As(err, &authErr) && authErr.Message != "":
		fmt.Fprintf(cmd.OutOrStdout(), "Login failed: %s\n", authErr.Message)
		return err
	case errors.As(err, &transportErr) && transportErr.Message != "":
		fmt.Fprintf(cmd.OutOrStdout(), "Login failed: %s\n", transportErr.Message)
		return err
	}
	return report(cmd, "login", err)
}

func (a *app) signupCommand() *cobra.Command {
	var form models.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a wholesale account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if form.Password == "" {
				if v, ok := envPassword(); ok {
					form.Password = v
				}
			}
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}
			res, err := a.client.Signup(cmd.Context(), form)
			if err != nil {
				return report(cmd, "signup", err)
			}
			if err := a.session.Set(cmd.Context(), res.Token, res.UserID); err != nil {
				return fail("saving session", err)
			}
			fmt.Fprintln(out, "Registration submitted. Your account will be reviewed before wholesale prices are shown.")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "Full name")
	flags.StringVar(&form.Email, "email", "", "Email")
	flags.StringVar(&form.Phone, "phone", "", "Phone number")
	flags.StringVar(&form.Address, "address", "", "Business address")
	flags.StringVar(&form.GSTNumber, "gst", "", "GST number")
	flags.StringVar(&form.Password, "password", "", "Password (or STOREFRONT_PASSWORD)")
	flags.StringVar(&form.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessionFor(admin).Clear(cmd.Context()); err != nil {
				return fail("clearing session", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Clear the back-office session")
	return cmd
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !a.session.Authenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			user, err := a.client.GetUser(cmd.Context(), a.session.UserID())
			if err != nil {
				return report(cmd, "profile", err)
			}
			fmt.Fprintf(out, "Welcome, %s\n", user.Name)
			fmt.Fprintf(out, "  Email:  %s\n", user.Email)
			if user.Status != "" {
				fmt.Fprintf(out, "  Status: %s\n", user.Status)
			}
			if claims, err := a.session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "  Token expires: %s\n", claims.ExpiresAt.Format(time.RFC3339))
			} else if err != nil {
				slog.Debug("token claims unavailable", slog.Any("error", err))
			}
			return nil
		},
	}
}

func (a *app) enquiryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enquiry",
		Short: "Send and review product enquiries",
	}
	cmd.AddCommand(a.enquiryCreateCommand(), a.enquiryListCommand())
	return cmd
}

func (a *app) enquiryCreateCommand() *cobra.Command {
	var (
		option   int
		quantity int
		message  string
	)
	cmd := &cobra.Command{
		Use:   "create <product-id>",
		Short: "Ask for a quote on a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if !a.session.Authenticated() {
				return report(cmd, "enquiry", api.AuthError{Op: "create enquiry", Message: "Please log in to send an enquiry"})
			}

			d := catalog.NewDetail(a.client)
			if err := d.Load(ctx, args[0]); err != nil {
				return report(cmd, "product", err)
			}
			if !d.SelectOption(option) {
				fmt.Fprintf(out, "Option %d does not exist, using the first option\n", option)
			}
			form := d.EnquiryForm(a.session.UserID(), quantity)
			form.Message = message
			if form.Message == "" {
				form.Message = d.EnquiryMessage(true)
			}
			if err := a.client.CreateEnquiry(ctx, form); err != nil {
				return report(cmd, "enquiry", err)
			}
			fmt.Fprintf(out, "Enquiry sent for %s (%s).\n", d.Product().Name, form.Option)
			return nil
		},
	}
	cmd.Flags().IntVar(&option, "option", 0, "Index of the quantity option")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity requested")
	cmd.Flags().StringVar(&message, "message", "", "Message to the sales team")
	return cmd
}

func (a *app) enquiryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your enquiries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Loading enquiries...")
			enquiries, err := a.client.ListEnquiries(cmd.Context(), a.session.UserID())
			if err != nil {
				return report(cmd, "enquiries", err)
			}
			if len(enquiries) == 0 {
				fmt.Fprintln(out, "No enquiries yet.")
				return nil
			}
			for _, e := range enquiries {
				added := "-"
				if !e.AddedAt.IsZero() {
					added = e.AddedAt.Format("2006-01-02")
				}
				fmt.Fprintf(out, "  %s  %-32s [%s]\n", added, e.Product.Name, e.Product.ID)
			}
			return nil
		},
	}
}
