package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartpaddy/advisor/pkg/client"
)

var errCredentialsRequired = errors.New("email and password are required")

func (a *App) newLoginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Long: `Log in to the advisory service. The token and account are stored in the
data directory. Without --password the password is read from stdin.`,
		Example: `  paddy login --email farmer@example.com --password secret
  echo secret | paddy login --email farmer@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := credentials(cmd.InOrStdin(), email, password)
			if err != nil {
				return err
			}

			resp, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(client.AsError(err).Message)
			}
			if err := a.store.Set(resp.AccessToken, *resp.User); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			a.logger.Info().Int64("user_id", resp.User.ID).Msg("logged in")

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", resp.User.Email, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	return cmd
}

func (a *App) newRegisterCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Create an account. Registering does not log in; run `paddy login` afterwards.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := credentials(cmd.InOrStdin(), email, password)
			if err != nil {
				return err
			}

			resp, err := a.api.Register(cmd.Context(), email, password)
			if err != nil {
				return errors.New(client.AsError(err).Message)
			}

			msg := "Registration successful"
			if resp.Message != "" {
				msg = resp.Message
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. Run `paddy login` to continue.\n", strings.TrimSuffix(msg, "."))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	return cmd
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			loggedIn := a.store.Current().Authenticated()

			// Clear anyway so a half-written session does not linger.
			if err := a.store.Clear(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			if !loggedIn {
				fmt.Fprintln(out, "Already logged out.")
				return nil
			}
			fmt.Fprintln(out, "Logged out.")
			printFarewell(out)
			return nil
		},
	}
}

func (a *App) newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireRole("")
			if err != nil {
				return err
			}

			user, err := a.api.Me(cmd.Context())
			if err != nil {
				return a.remoteError(err)
			}
			if err := a.store.Set(s.Token, *user); err != nil {
				a.logger.Warn().Err(err).Msg("refreshing stored user")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
}

// credentials trims email and falls back to the first line of in for the
// password.
func credentials(in io.Reader, email, password string) (string, string, error) {
	email = strings.TrimSpace(email)
	if password == "" && email != "" {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if email == "" || password == "" {
		return "", "", errCredentialsRequired
	}
	return email, password, nil
}
