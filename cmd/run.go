package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <recipe-id> [--input value ...]",
	Short: "Run a recipe as the current acting role",
	Long: `Runs a recipe through the permission and approval pipeline. Recipe
inputs are passed as flags, e.g.:

  bizmate run business-snapshot \
    --company_name "Acme" \
    --user_role "Founder" \
    --business_description "We sell anvils" \
    --products_services "Anvils, anvil repair" \
    --current_goals "Double revenue"

Write and execute recipes may stop at a pending plan instead of
producing a result; approve it with ` + "`bizmate plans approve`" + `.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			return cmd.Help()
		}
		recipeID := args[0]

		inputs, err := parseInputFlags(args[1:])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.buildRunner()
		if err != nil {
			return err
		}

		result, err := run.Run(cmd.Context(), recipeID, inputs, runner.Options{})
		if err != nil {
			return err
		}

		printResult(result)
		if !result.Success && !result.PendingApproval {
			os.Exit(1)
		}
		return nil
	},
}

// parseInputFlags turns trailing `--key value` pairs into a recipe
// input map. Flags without a value are an error.
func parseInputFlags(args []string) (map[string]string, error) {
	inputs := map[string]string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument %q, recipe inputs are passed as --key value", arg)
		}
		key := strings.TrimPrefix(arg, "--")
		if eq := strings.Index(key, "="); eq >= 0 {
			inputs[key[:eq]] = key[eq+1:]
			continue
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("flag --%s is missing a value", key)
		}
		inputs[key] = args[i+1]
		i++
	}
	return inputs, nil
}

func printResult(result *runner.Result) {
	switch {
	case result.PendingApproval:
		fmt.Println("Approval required.")
		if result.Artifact != nil {
			fmt.Printf("Plan %s is pending. Approve with:\n  bizmate plans approve %s --as <role-id>\n", result.Artifact.ID, result.Artifact.ID)
		}
	case result.Success:
		fmt.Println("Recipe completed.")
	default:
		fmt.Fprintf(os.Stderr, "Recipe failed: %s\n", result.Error)
	}

	if result.Artifact != nil && !result.PendingApproval {
		fmt.Printf("\nArtifact %s (type %s, version %d)\n", result.Artifact.ID, result.Artifact.Type, result.Artifact.Version)
		if pretty, err := json.MarshalIndent(json.RawMessage(result.Artifact.Data), "", "  "); err == nil {
			fmt.Println(string(pretty))
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Println("\nSuggested next steps:")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s (%.0f%%): %s\n", s.RecipeID, s.Confidence*100, s.Reason)
		}
	}
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List the available recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, def := range a.registry.List() {
			fmt.Printf("%s — %s [%s]\n", def.ID, def.Title, def.Classification)
			if len(def.RequiredInputs) > 0 {
				fmt.Printf("    inputs: %s\n", strings.Join(def.RequiredInputs, ", "))
			}
			fmt.Printf("    %s\n", def.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recipesCmd)
}
