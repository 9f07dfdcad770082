package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/brainiac5/brainiac-server/internal/service"
)

func enrollCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <email>",
		Short: "Enroll a user or rotate their TOTP secret",
		Long: `Generate a fresh TOTP secret for the given email and print the
provisioning URI to add to an authenticator app. Re-enrolling an existing
email replaces its secret and ends all of its sessions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(func(i do.Injector) error {
				authService, err := do.Invoke[*service.AuthService](i)
				if err != nil {
					return err
				}

				result, err := authService.Enroll(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("enroll %s: %w", args[0], err)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintln(w, okStyle.Render("Enrolled"))
				printField(w, "User", result.User.ID)
				printField(w, "Email", result.User.Email)
				if result.RevokedSessions > 0 {
					printField(w, "Ended sessions", strconv.Itoa(result.RevokedSessions))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, titleStyle.Render("Add this to your authenticator app. It is not shown again."))
				fmt.Fprintln(w, secretStyle.Render(result.URI))
				return nil
			})
		},
	}
}
