package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/brainiac5/brainiac-server/internal/service"
	"github.com/brainiac5/brainiac-server/internal/store"
)

func checkOrphansCmd(opts *globalOptions) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "check-orphans",
		Short: "Report relations whose idea or tag no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(func(i do.Injector) error {
				maintenance, err := do.Invoke[*service.MaintenanceService](i)
				if err != nil {
					return err
				}

				orphans, err := maintenance.CheckOrphans(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(orphans) == 0 {
					fmt.Fprintln(w, okStyle.Render("No orphaned relations"))
					return nil
				}

				fmt.Fprintln(w, renderOrphans(orphans))
				fmt.Fprintln(w)

				if !fix {
					fmt.Fprintln(w, warnStyle.Render(strconv.Itoa(len(orphans))+" orphaned relations")+
						" (run with --fix to remove them)")
					return nil
				}

				removed, err := maintenance.FixOrphans(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(w, okStyle.Render("Removed "+strconv.Itoa(removed)+" orphaned relations"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Delete the orphaned relations")

	return cmd
}

func renderOrphans(orphans []store.OrphanRelation) string {
	rows := make([][]string, 0, len(orphans))
	for _, o := range orphans {
		rows = append(rows, []string{o.IdeaID, o.TagName, orphanReason(o)})
	}
	return renderTable([]string{"IDEA", "TAG", "MISSING"}, rows)
}

func orphanReason(o store.OrphanRelation) string {
	switch {
	case o.MissingIdea && o.MissingTag:
		return "idea, tag"
	case o.MissingIdea:
		return "idea"
	case o.MissingTag:
		return "tag"
	default:
		return ""
	}
}
