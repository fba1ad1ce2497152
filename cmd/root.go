package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "maplog",
		Short:         "maplog: location-tagged diaries, friends, and notifications from the terminal",
		Long:          "maplog is a terminal client for the map log service: write diary entries pinned to map coordinates, share them with friends, browse the feed, and follow notifications live.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newSignupCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newDiaryCmd(app),
		newFeedCmd(app),
		newFriendCmd(app),
		newNotificationCmd(app),
		newUserCmd(app),
		newAdminCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
