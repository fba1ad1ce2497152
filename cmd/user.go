package cmd

import (
	"fmt"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Profile, search, and my-page listings",
	}

	cmd.AddCommand(
		newUserUpdateCmd(app),
		newUserDiariesCmd(app),
		newUserScrapsCmd(app),
		newUserSearchCmd(app),
		newUserCheckNicknameCmd(app),
		newUserDeleteCmd(app),
	)

	return cmd
}

func newUserUpdateCmd(app *app) *cobra.Command {
	var nickname string
	var image string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update nickname or profile image",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "New nickname")
	cmd.Flags().StringVar(&image, "image", "", "Path to a new profile image")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		if nickname == "" && image == "" {
			return fmt.Errorf("nothing to update: pass --nickname and/or --image")
		}

		user, err := app.users.UpdateProfile(cmd.Context(), nickname, image)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s\n", user.Nickname)
		return err
	})

	return cmd
}

func newUserDiariesCmd(app *app) *cobra.Command {
	var page int
	var size int

	cmd := &cobra.Command{
		Use:   "diaries",
		Short: "List my diary entries",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		diaries, err := app.users.MyDiaries(cmd.Context(), page, size)
		if err != nil {
			return err
		}

		return printDiaryPage(cmd, diaries)
	})

	return cmd
}

func newUserScrapsCmd(app *app) *cobra.Command {
	var page int
	var size int

	cmd := &cobra.Command{
		Use:   "scraps",
		Short: "List my scrapped diary entries",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		scraps, err := app.users.MyScraps(cmd.Context(), page, size)
		if err != nil {
			return err
		}

		return printDiaryPage(cmd, scraps)
	})

	return cmd
}

func printDiaryPage(cmd *cobra.Command, page domain.Page[domain.DiarySummary]) error {
	out := cmd.OutOrStdout()
	if len(page.Content) == 0 {
		_, err := fmt.Fprintln(out, "No entries")
		return err
	}

	for _, entry := range page.Content {
		fmt.Fprintf(out, "%d  %s @ %s (%s)\n", entry.ID, entry.Title, entry.LocationName, entry.Visibility)
	}
	return nil
}

func newUserSearchCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <nickname>",
		Short: "Search users by nickname",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		users, err := app.users.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			_, err := fmt.Fprintln(out, "No users found")
			return err
		}
		for _, user := range users {
			fmt.Fprintf(out, "%d  %s\n", user.ID, user.Nickname)
		}
		return nil
	})

	return cmd
}

func newUserCheckNicknameCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-nickname <nickname>",
		Short: "Check whether a nickname is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := app.users.CheckNickname(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if available {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%q is available\n", args[0])
			} else {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%q is taken\n", args[0])
			}
			return err
		},
	}

	return cmd
}

func newUserDeleteCmd(app *app) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete my account and clear the local session",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm account deletion")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		if !confirmed {
			return fmt.Errorf("refusing to delete the account without --yes")
		}

		if err := app.users.DeleteAccount(cmd.Context()); err != nil {
			return err
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
		return err
	})

	return cmd
}
