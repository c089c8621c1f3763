package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bobinette/atelier/errors"
)

func init() {
	for _, cmd := range []*cobra.Command{&LoginCommand, &RegisterCommand} {
		cmd.Flags().String("email", "", "email of the account")
		cmd.Flags().String("password", "", "password of the account, ATELIER_PASSWORD if empty")
		RootCmd.AddCommand(cmd)
	}

	RootCmd.AddCommand(&LogoutCommand)
	RootCmd.AddCommand(&StatusCommand)
}

func credentials(cmd *cobra.Command) (string, string, error) {
	email := cmd.Flag("email").Value.String()
	password := cmd.Flag("password").Value.String()
	if password == "" {
		password = os.Getenv("ATELIER_PASSWORD")
	}

	if email == "" || password == "" {
		return "", "", errors.New("email and password are required", errors.Validation(), errors.BadRequest())
	}
	return email, password, nil
}

var LoginCommand = cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long:  "Sign in and keep the session for the next commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentials(cmd)
		if err != nil {
			return err
		}

		state, err := manager.Login(context.Background(), email, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", state.User.Name, state.User.Email)
		return nil
	},
}

var RegisterCommand = cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  "Create an account. It does not sign you in.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentials(cmd)
		if err != nil {
			return err
		}

		if err := manager.Register(context.Background(), email, password); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `atelier login` to sign in.")
		return nil
	},
}

var LogoutCommand = cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long:  "Sign out and forget the session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		manager.Logout()
	},
}

var StatusCommand = cobra.Command{
	Use:   "status",
	Short: "Show the session",
	Long:  "Show whether a session is stored and when it expires",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		if !manager.State().Authenticated {
			fmt.Fprintln(out, "Not logged in")
			return
		}

		exp, ok := manager.Expiry()
		switch {
		case !ok:
			fmt.Fprintln(out, "Logged in")
		case exp.Before(time.Now()):
			fmt.Fprintf(out, "Logged in, session expired %s\n", humanize.Time(exp))
		default:
			fmt.Fprintf(out, "Logged in, session expires %s\n", humanize.Time(exp))
		}
	},
}
