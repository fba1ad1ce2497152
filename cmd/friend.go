package cmd

import (
	"fmt"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newFriendCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Manage friends and friend requests",
	}

	cmd.AddCommand(
		newFriendRequestCmd(app),
		newFriendAcceptCmd(app),
		newFriendRejectCmd(app),
		newFriendListCmd(app),
		newFriendPendingCmd(app),
	)

	return cmd
}

func newFriendRequestCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request <user-id>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		receiverID, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := app.friends.SendRequest(cmd.Context(), receiverID); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Friend request sent to user %d\n", receiverID)
		return err
	})

	return cmd
}

func newFriendAcceptCmd(app *app) *cobra.Command {
	return newFriendRespondCmd(app, "accept", domain.FriendAccept)
}

func newFriendRejectCmd(app *app) *cobra.Command {
	return newFriendRespondCmd(app, "reject", domain.FriendReject)
}

func newFriendRespondCmd(app *app, use string, action domain.FriendAction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <friend-id>",
		Short: fmt.Sprintf("%s a pending friend request", use),
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		friendID, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := app.friends.Respond(cmd.Context(), friendID, action); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Request %d: %s\n", friendID, action)
		return err
	})

	return cmd
}

func newFriendListCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List friends",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		friends, err := app.friends.Friends(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(friends) == 0 {
			_, err := fmt.Fprintln(out, "No friends yet")
			return err
		}
		for _, friend := range friends {
			fmt.Fprintf(out, "%d  %s (user %d)\n", friend.FriendID, friend.Nickname, friend.UserID)
		}
		return nil
	})

	return cmd
}

func newFriendPendingCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List received friend requests",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		pending, err := app.friends.Pending(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(pending) == 0 {
			_, err := fmt.Fprintln(out, "No pending requests")
			return err
		}
		for _, request := range pending {
			fmt.Fprintf(out, "%d  from %s (user %d) at %s\n",
				request.FriendID, request.RequesterNickname, request.RequesterID,
				request.RequestedAt.Format("2006-01-02 15:04"))
		}
		return nil
	})

	return cmd
}
