package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EstateEmpire/estateempire-backend/client"
)

func passwordFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "password", "p", os.Getenv("ESTATECTL_PASSWORD"), "password (env ESTATECTL_PASSWORD)")
}

func (a *app) signupCmd() *cobra.Command {
	var password, accountType string
	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and receive a verification code by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.Signup(cmd.Context(), args[0], password, client.Role(accountType))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Check your inbox, then run `estatectl verify %s <code>`.\n",
				res.User.Email, res.User.Email)
			return nil
		},
	}
	passwordFlag(cmd, &password)
	cmd.Flags().StringVar(&accountType, "as", "client", "account type: client or agent")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var resend bool
	cmd := &cobra.Command{
		Use:   "verify <email> [code]",
		Short: "Verify your email with the code you received",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resend {
				if err := a.api.ResendCode(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "A new code is on its way.")
				return nil
			}
			if len(args) < 2 {
				return fmt.Errorf("verification code is required")
			}
			if err := a.api.VerifyEmail(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email verified. You can now log in.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&resend, "resend", false, "send a new code instead of verifying")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Start at %s.\n", s.Email, s.Role, client.NextAfterLogin(s.Role))
			return nil
		},
	}
	passwordFlag(cmd, &password)
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and remove it from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: server logout failed:", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.api.Session().Current()
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			u, err := a.api.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
}
