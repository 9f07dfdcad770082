package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/brainiac5/brainiac-server/internal/service"
)

func reindexCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the similarity index from the database",
		Long: `Rebuild the similarity index from every stored idea. The index is
locked while the server runs, so stop the server first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(func(i do.Injector) error {
				maintenance, err := do.Invoke[*service.MaintenanceService](i)
				if err != nil {
					return err
				}

				start := time.Now()
				count, err := maintenance.Reindex(cmd.Context())
				if err != nil {
					return fmt.Errorf("reindex: %w", err)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintln(w, okStyle.Render("Reindexed"))
				printField(w, "Documents", strconv.Itoa(count))
				printField(w, "Took", time.Since(start).Round(time.Millisecond).String())
				return nil
			})
		},
	}
}
