package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/changelog"
)

var (
	changelogEntityType string
	changelogEntityID   string
	changelogAction     string
	changelogLimit      int
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Query the audit trail of business state changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.changes.Query(cmd.Context(), changelog.QueryFilter{
			EntityType: changelog.EntityType(changelogEntityType),
			EntityID:   changelogEntityID,
			Action:     changelog.Action(changelogAction),
			Limit:      changelogLimit,
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No change log entries match.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %-6s %s/%s  by %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.EntityType, e.EntityID, e.ActorID)
			if verbose && e.Diff != "" && e.Diff != "{}" {
				fmt.Printf("    %s\n", e.Diff)
			}
		}
		return nil
	},
}

func init() {
	changelogCmd.Flags().StringVar(&changelogEntityType, "entity-type", "", "filter by entity type (company, role, artifact, session)")
	changelogCmd.Flags().StringVar(&changelogEntityID, "entity-id", "", "filter by entity id")
	changelogCmd.Flags().StringVar(&changelogAction, "action", "", "filter by action (create, update, delete)")
	changelogCmd.Flags().IntVar(&changelogLimit, "limit", 20, "maximum entries to show")
	rootCmd.AddCommand(changelogCmd)
}
