package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/role"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List and switch between roles",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the company's roles",
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
		roles, err := a.roles.ListByCompany(cmd.Context(), sess.CompanyID)
		if err != nil {
			return err
		}

		for _, r := range roles {
			marker := " "
			if r.ID == sess.ActingAs {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, r.ID, r.Title)
			if len(r.DecisionScope) > 0 {
				fmt.Printf("    decision scope: %s\n", joinScopes(r.DecisionScope))
			}
			if len(r.RecipesAllowed) > 0 {
				fmt.Printf("    allowed recipes: %s\n", strings.Join(r.RecipesAllowed, ", "))
			}
			if len(r.RecipesRequireApproval) > 0 {
				fmt.Printf("    requires approval: %s\n", strings.Join(r.RecipesRequireApproval, ", "))
			}
		}
		return nil
	},
}

var rolesSwitchCmd = &cobra.Command{
	Use:   "switch <role-id>",
	Short: "Switch the session's acting role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.engine.EnsureSession(cmd.Context()); err != nil {
			return err
		}
		sess, err := a.engine.SwitchRole(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Now acting as %s.\n", sess.ActingAs)
		return nil
	},
}

func joinScopes(scopes []role.DecisionScope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func init() {
	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesSwitchCmd)
	rootCmd.AddCommand(rolesCmd)
}
