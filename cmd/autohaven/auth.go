package main

import (
	"fmt"

	"autohaven/internal/domain/model"

	"github.com/spf13/cobra"
)

func describeCaller(c model.CallerIdentity) string {
	if c.IsAnonymous() {
		return "not logged in"
	}
	return fmt.Sprintf("%s <%s> (%s)", c.User.Name, c.User.Email, c.Kind)
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registered as", describeCaller(caller))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in as", describeCaller(caller))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !remote {
				fmt.Fprintln(cmd.OutOrStdout(), describeCaller(a.session.CurrentIdentity().Caller))
				return nil
			}
			user, err := a.session.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the profile from the server")
	return cmd
}
