package cmd

import (
	"fmt"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/cobra"
)

// requireAuth gates a command behind a stored session, hydrating the
// identity first when only the credential survived a restart.
func requireAuth(app *app, run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		session, err := app.auth.Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if !session.IsAuthenticated() {
			return fmt.Errorf("%w: run `maplog login` first", domain.ErrNotAuthenticated)
		}
		if session.NeedsHydration() {
			if _, err := app.auth.HydrateIdentity(cmd.Context()); err != nil {
				return fmt.Errorf("hydrate identity: %w", err)
			}
		}

		return run(cmd, args)
	}
}

func requireAdmin(app *app, run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return requireAuth(app, func(cmd *cobra.Command, args []string) error {
		session, err := app.auth.Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if !session.IsAdmin() {
			return domain.ErrAdminRequired
		}

		return run(cmd, args)
	})
}
