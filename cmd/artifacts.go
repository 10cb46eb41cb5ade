package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/artifact"
)

var artifactsTypeFlag string

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect the versioned artifact store",
}

var artifactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List artifacts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.engine.EnsureSession(cmd.Context())
		if err != nil {
			return err
		}

		arts, err := a.artifacts.Query(cmd.Context(), artifact.QueryFilter{
			CompanyID:  sess.CompanyID,
			Type:       artifactsTypeFlag,
			OrderBy:    artifact.OrderByCreatedAt,
			Descending: true,
		})
		if err != nil {
			return err
		}

		for _, art := range arts {
			fmt.Printf("%s  %-20s v%-3d %s  by %s as %s\n",
				art.CreatedAt.Format("2006-01-02 15:04"), art.Type, art.Version, art.ID, art.CreatedBy, art.ActedAsRole)
		}
		return nil
	},
}

var artifactsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an artifact's payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		art, err := a.artifacts.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Artifact %s (type %s, version %d)\n", art.ID, art.Type, art.Version)
		fmt.Printf("Created %s by %s acting as %s\n\n", art.CreatedAt.Format("2006-01-02 15:04:05"), art.CreatedBy, art.ActedAsRole)
		pretty, err := json.MarshalIndent(json.RawMessage(art.Data), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	},
}

var artifactsHistoryCmd = &cobra.Command{
	Use:   "history <type>",
	Short: "Show every version of an artifact type, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.engine.EnsureSession(cmd.Context())
		if err != nil {
			return err
		}

		arts, err := a.artifacts.History(cmd.Context(), sess.CompanyID, args[0])
		if err != nil {
			return err
		}
		if len(arts) == 0 {
			fmt.Printf("No artifacts of type %q yet.\n", args[0])
			return nil
		}

		for _, art := range arts {
			fmt.Printf("v%-3d %s  %s  by %s as %s\n",
				art.Version, art.ID, art.CreatedAt.Format("2006-01-02 15:04"), art.CreatedBy, art.ActedAsRole)
		}
		return nil
	},
}

func init() {
	artifactsListCmd.Flags().StringVar(&artifactsTypeFlag, "type", "", "filter by artifact type")
	artifactsCmd.AddCommand(artifactsListCmd)
	artifactsCmd.AddCommand(artifactsShowCmd)
	artifactsCmd.AddCommand(artifactsHistoryCmd)
	rootCmd.AddCommand(artifactsCmd)
}
