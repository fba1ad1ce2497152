package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/maplog-cli/internal/application"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

const visitedAtLayout = "2006-01-02T15:04:05"

func newDiaryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Create and manage diary entries pinned to map locations",
	}

	cmd.AddCommand(
		newDiaryCreateCmd(app),
		newDiaryShowCmd(app),
		newDiaryEditCmd(app),
		newDiaryDeleteCmd(app),
		newDiaryMarkersCmd(app),
		newDiaryShareCmd(app),
		newDiaryUnshareCmd(app),
		newDiaryScrapCmd(app),
	)

	return cmd
}

type diaryFlags struct {
	title        string
	content      string
	latitude     float64
	longitude    float64
	locationName string
	address      string
	visitedAt    string
	visibility   string
	images       []string
}

func (f *diaryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Entry title")
	cmd.Flags().StringVar(&f.content, "content", "", "Entry body")
	cmd.Flags().Float64Var(&f.latitude, "lat", 0, "Latitude of the pinned location")
	cmd.Flags().Float64Var(&f.longitude, "lng", 0, "Longitude of the pinned location")
	cmd.Flags().StringVar(&f.locationName, "location", "", "Name of the pinned location")
	cmd.Flags().StringVar(&f.address, "address", "", "Street address (optional)")
	cmd.Flags().StringVar(&f.visitedAt, "visited-at", "", "Visit time, e.g. 2026-08-28T19:30:00")
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "PRIVATE, FRIENDS, or PUBLIC")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "Image file to attach (repeatable)")
}

func (f *diaryFlags) draft() (application.DiaryDraft, error) {
	draft := application.DiaryDraft{
		Title:        f.title,
		Content:      f.content,
		Latitude:     f.latitude,
		Longitude:    f.longitude,
		LocationName: f.locationName,
		Address:      f.address,
		Visibility:   domain.Visibility(f.visibility),
	}

	if f.visitedAt != "" {
		visitedAt, err := time.Parse(visitedAtLayout, f.visitedAt)
		if err != nil {
			return application.DiaryDraft{}, fmt.Errorf("parse --visited-at: %w", err)
		}
		draft.VisitedAt = visitedAt
	}

	return draft, nil
}

func newDiaryCreateCmd(app *app) *cobra.Command {
	flags := &diaryFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new diary entry",
		Args:  cobra.NoArgs,
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("location")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		draft, err := flags.draft()
		if err != nil {
			return err
		}

		diary, err := app.diaries.Create(cmd.Context(), draft, flags.images)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created diary %d: %s @ %s\n", diary.ID, diary.Title, diary.LocationName)
		return err
	})

	return cmd
}

func newDiaryShowCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <diary-id>",
		Short: "Show one diary entry",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}

		diary, err := app.diaries.Get(cmd.Context(), diaryID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (diary %d, by %s)\n", diary.Title, diary.ID, diary.AuthorNickname)
		fmt.Fprintf(out, "%s (%.5f, %.5f) %s\n", diary.LocationName, diary.Latitude, diary.Longitude, diary.Visibility)
		if !diary.VisitedAt.IsZero() {
			fmt.Fprintf(out, "visited %s\n", diary.VisitedAt.Format(visitedAtLayout))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, diary.Content)
		for _, image := range diary.Images {
			fmt.Fprintf(out, "image: %s\n", image.ImageURL)
		}
		return nil
	})

	return cmd
}

func newDiaryEditCmd(app *app) *cobra.Command {
	flags := &diaryFlags{}

	cmd := &cobra.Command{
		Use:   "edit <diary-id>",
		Short: "Update a diary entry",
		Args:  cobra.ExactArgs(1),
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("location")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}

		draft, err := flags.draft()
		if err != nil {
			return err
		}

		diary, err := app.diaries.Update(cmd.Context(), diaryID, draft, flags.images)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated diary %d: %s\n", diary.ID, diary.Title)
		return err
	})

	return cmd
}

func newDiaryDeleteCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <diary-id>",
		Short: "Delete a diary entry",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := app.diaries.Delete(cmd.Context(), diaryID); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted diary %d\n", diaryID)
		return err
	})

	return cmd
}

func newDiaryMarkersCmd(app *app) *cobra.Command {
	var bounds domain.Bounds

	cmd := &cobra.Command{
		Use:   "markers",
		Short: "List diary pins inside a map viewport",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().Float64Var(&bounds.SWLat, "sw-lat", 0, "South-west latitude")
	cmd.Flags().Float64Var(&bounds.SWLng, "sw-lng", 0, "South-west longitude")
	cmd.Flags().Float64Var(&bounds.NELat, "ne-lat", 0, "North-east latitude")
	cmd.Flags().Float64Var(&bounds.NELng, "ne-lng", 0, "North-east longitude")
	_ = cmd.MarkFlagRequired("sw-lat")
	_ = cmd.MarkFlagRequired("sw-lng")
	_ = cmd.MarkFlagRequired("ne-lat")
	_ = cmd.MarkFlagRequired("ne-lng")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, _ []string) error {
		markers, err := app.diaries.Markers(cmd.Context(), bounds)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(markers) == 0 {
			_, err := fmt.Fprintln(out, "No diaries in this area")
			return err
		}
		for _, marker := range markers {
			fmt.Fprintf(out, "%d  (%.5f, %.5f)  %s\n", marker.ID, marker.Latitude, marker.Longitude, marker.Title)
		}
		return nil
	})

	return cmd
}

func newDiaryShareCmd(app *app) *cobra.Command {
	var friendIDs []int64

	cmd := &cobra.Command{
		Use:   "share <diary-id>",
		Short: "Share a diary entry with friends",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().Int64SliceVar(&friendIDs, "friend", nil, "Friend user ID to share with (repeatable)")
	_ = cmd.MarkFlagRequired("friend")

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := app.diaries.Share(cmd.Context(), diaryID, friendIDs); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Shared diary %d with %d friend(s)\n", diaryID, len(friendIDs))
		return err
	})

	return cmd
}

func newDiaryUnshareCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unshare <diary-id> <user-id>",
		Short: "Stop sharing a diary entry with a user",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		userID, err := parseID(args[1])
		if err != nil {
			return err
		}

		if err := app.diaries.Unshare(cmd.Context(), diaryID, userID); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Unshared diary %d from user %d\n", diaryID, userID)
		return err
	})

	return cmd
}

func newDiaryScrapCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrap",
		Short: "Save or unsave diary entries",
	}

	add := &cobra.Command{
		Use:   "add <diary-id>",
		Short: "Scrap a diary entry",
		Args:  cobra.ExactArgs(1),
	}
	add.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.diaries.AddScrap(cmd.Context(), diaryID); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Scrapped diary %d\n", diaryID)
		return err
	})

	remove := &cobra.Command{
		Use:   "remove <diary-id>",
		Short: "Remove a diary entry from scraps",
		Args:  cobra.ExactArgs(1),
	}
	remove.RunE = requireAuth(app, func(cmd *cobra.Command, args []string) error {
		diaryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.diaries.RemoveScrap(cmd.Context(), diaryID); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed diary %d from scraps\n", diaryID)
		return err
	})

	cmd.AddCommand(add, remove)
	return cmd
}
