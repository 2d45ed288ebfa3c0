package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/domain"
)

var errUserNotIdentified = errors.New("user not identified")

func (a *App) newHistoryCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your past predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := recordFormat(output)
			if err != nil {
				return err
			}
			s, err := a.requireRole("")
			if err != nil {
				return err
			}
			if s.User.ID == 0 {
				return errUserNotIdentified
			}

			entries, err := a.api.PredictionsByUser(cmd.Context(), s.User.ID)
			if err != nil {
				return a.remoteError(err)
			}
			if len(entries) == 0 && format == report.FormatText {
				fmt.Fprintln(cmd.OutOrStdout(), "No predictions found yet.")
				return nil
			}
			return writeRecords(cmd.OutOrStdout(), format, entries, report.History(entries))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func (a *App) newUsersCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered accounts (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := recordFormat(output)
			if err != nil {
				return err
			}
			if _, err := a.requireRole(domain.RoleAdmin); err != nil {
				return err
			}

			users, err := a.api.ListUsers(cmd.Context())
			if err != nil {
				return a.remoteError(err)
			}
			if len(users) == 0 && format == report.FormatText {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}
			return writeRecords(cmd.OutOrStdout(), format, users, report.Users(users))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config, session or logger needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paddy %s\n", a.version)
		},
	}
}

// recordFormat accepts the formats that make sense for lists.
func recordFormat(s string) (report.Format, error) {
	format, err := report.ParseFormat(s)
	if err != nil {
		return "", err
	}
	if format == report.FormatMarkdown {
		return "", fmt.Errorf("invalid format %q: must be one of: text, json, yaml", s)
	}
	return format, nil
}

func writeRecords(w io.Writer, format report.Format, records any, table report.Data) error {
	if format == report.FormatText {
		return report.WriteTable(w, table)
	}
	return report.Encode(w, records, format)
}
