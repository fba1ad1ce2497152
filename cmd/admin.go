package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/maplog-cli/internal/application"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration commands (ADMIN role required)",
	}

	cmd.AddCommand(
		newAdminUsersCmd(app),
		newAdminStatusCmd(app),
	)

	return cmd
}

func newAdminUsersCmd(app *app) *cobra.Command {
	var page int
	var size int
	var status string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (ACTIVE or SUSPENDED)")

	cmd.RunE = requireAdmin(app, func(cmd *cobra.Command, _ []string) error {
		users, err := app.admin.Users(cmd.Context(), page, size, domain.UserStatus(status))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(users.Content) == 0 {
			_, err := fmt.Fprintln(out, "No users")
			return err
		}

		fmt.Fprintf(out, "Users page %d/%d (%d total)\n\n", users.Page+1, users.TotalPages, users.TotalElements)
		for _, user := range users.Content {
			fmt.Fprintf(out, "%d  %-20s %-10s %s", user.ID, user.Nickname, user.Status, user.Email)
			if user.SuspensionReason != "" {
				fmt.Fprintf(out, "  (%s)", user.SuspensionReason)
			}
			fmt.Fprintln(out)
		}
		return nil
	})

	return cmd
}

func newAdminStatusCmd(app *app) *cobra.Command {
	var status string
	var reason string
	var expiresAt string

	cmd := &cobra.Command{
		Use:   "status <user-id>",
		Short: "Change a user's status",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&status, "status", "", "New status (ACTIVE or SUSPENDED)")
	cmd.Flags().StringVar(&reason, "reason", "", "Suspension reason")
	cmd.Flags().StringVar(&expiresAt, "expires-at", "", "Suspension expiry, e.g. 2026-09-01T00:00:00")
	_ = cmd.MarkFlagRequired("status")

	cmd.RunE = requireAdmin(app, func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}

		change := application.StatusChange{
			Status:           domain.UserStatus(status),
			SuspensionReason: reason,
		}
		if expiresAt != "" {
			parsed, err := time.Parse(visitedAtLayout, expiresAt)
			if err != nil {
				return fmt.Errorf("parse --expires-at: %w", err)
			}
			change.SuspensionExpiresAt = &parsed
		}

		if err := app.admin.ChangeStatus(cmd.Context(), userID, change); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "User %d status set to %s\n", userID, change.Status)
		return err
	})

	return cmd
}
