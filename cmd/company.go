package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.engine.EnsureSession(cmd.Context()); err != nil {
			return err
		}
		comp, err := a.companies.GetAny(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", comp.Name, comp.ID)
		if comp.ContextSummary != "" {
			fmt.Printf("\n%s\n", comp.ContextSummary)
		}
		printList("Goals", comp.Goals)
		printList("Constraints", comp.Constraints)
		printList("Systems", comp.Systems)
		if len(comp.Metrics) > 0 {
			fmt.Println("\nMetrics:")
			if pretty, err := json.MarshalIndent(comp.Metrics, "  ", "  "); err == nil {
				fmt.Printf("  %s\n", pretty)
			}
		}
		return nil
	},
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, item := range items {
		fmt.Printf("  - %s\n", strings.TrimSpace(item))
	}
}

func init() {
	rootCmd.AddCommand(companyCmd)
}
