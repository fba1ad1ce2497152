package cmd

import (
	"context"
	"fmt"

	renderadapter "github.com/bnema/maplog-cli/internal/adapters/render/notifications"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newNotificationCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications"},
		Short:   "List and manage notifications",
	}

	cmd.AddCommand(
		newNotificationListCmd(app),
		newNotificationReadCmd(app),
		newNotificationReadAllCmd(app),
		newNotificationDeleteCmd(app),
	)

	return cmd
}

func newNotificationListCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the notification list with unread badge",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		var notifications []domain.Notification
		err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching notifications...", func(ctx context.Context) error {
			var fetchErr error
			notifications, fetchErr = app.notifications.Fetch(ctx)
			return fetchErr
		})
		if err != nil {
			return err
		}

		rendered, err := renderadapter.Render(notifications, renderadapter.RenderOptions{Now: app.now()})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	})

	return cmd
}

func newNotificationReadCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := app.notifications.MarkRead(cmd.Context(), id); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Notification %d marked read\n", id)
		return err
	})

	return cmd
}

func newNotificationReadAllCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		if err := app.notifications.MarkAllRead(cmd.Context()); err != nil {
			return err
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked read")
		return err
	})

	return cmd
}

func newNotificationDeleteCmd(app *app) *cobra.Command {
	var read bool
	var unread bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete notifications (all, or filtered by read state)",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().BoolVar(&read, "read", false, "Delete only read notifications")
	cmd.Flags().BoolVar(&unread, "unread", false, "Delete only unread notifications")
	cmd.MarkFlagsMutuallyExclusive("read", "unread")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		filter := ""
		if read {
			filter = "Y"
		} else if unread {
			filter = "N"
		}

		if err := app.notifications.Delete(cmd.Context(), filter); err != nil {
			return err
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Notifications deleted")
		return err
	})

	return cmd
}
