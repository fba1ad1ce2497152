package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newFeedCmd(app *app) *cobra.Command {
	var page int
	var size int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse diary entries shared by friends",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		var feed domain.Page[domain.DiarySummary]
		err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching feed...", func(ctx context.Context) error {
			var fetchErr error
			feed, fetchErr = app.diaries.Feed(ctx, page, size)
			return fetchErr
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(feed.Content) == 0 {
			_, err := fmt.Fprintln(out, "Feed is empty")
			return err
		}

		fmt.Fprintf(out, "Feed page %d/%d (%d entries total)\n\n", feed.Page+1, feed.TotalPages, feed.TotalElements)
		for _, entry := range feed.Content {
			fmt.Fprintf(out, "%d  %s @ %s", entry.ID, entry.Title, entry.LocationName)
			if !entry.VisitedAt.IsZero() {
				fmt.Fprintf(out, " (visited %s)", entry.VisitedAt.Format("2006-01-02"))
			}
			fmt.Fprintln(out)
		}
		return nil
	})

	return cmd
}
