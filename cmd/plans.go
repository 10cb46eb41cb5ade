package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/artifact"
)

var (
	plansAllFlag    bool
	plansAsRole     string
	plansRejectWhy  string
	plansRejectRole string
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Work the approval queue for write and execute recipes",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans, pending ones by default",
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
			Type:       artifact.TypePlan,
			OrderBy:    artifact.OrderByCreatedAt,
			Descending: true,
		})
		if err != nil {
			return err
		}

		shown := 0
		for _, art := range arts {
			plan, err := art.Plan()
			if err != nil {
				return err
			}
			if !plansAllFlag && plan.Status != artifact.StatusPending {
				continue
			}
			shown++
			fmt.Printf("%s  %-10s %s  recipe %s  as %s\n",
				art.CreatedAt.Format("2006-01-02 15:04"), plan.Status, art.ID, plan.RecipeID, art.ActedAsRole)
			if plan.Body.Summary != "" {
				fmt.Printf("    %s\n", plan.Body.Summary)
			}
		}
		if shown == 0 {
			if plansAllFlag {
				fmt.Println("No plans yet.")
			} else {
				fmt.Println("No pending plans.")
			}
		}
		return nil
	},
}

var plansApproveCmd = &cobra.Command{
	Use:   "approve <plan-id>",
	Short: "Approve a pending plan and execute it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if plansAsRole == "" {
			return fmt.Errorf("--as <role-id> is required")
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

		result, err := run.Approve(cmd.Context(), args[0], plansAsRole)
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

var plansRejectCmd = &cobra.Command{
	Use:   "reject <plan-id>",
	Short: "Reject a pending plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if plansRejectRole == "" {
			return fmt.Errorf("--as <role-id> is required")
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

		if err := run.Reject(cmd.Context(), args[0], plansRejectRole, plansRejectWhy); err != nil {
			return err
		}
		fmt.Println("Plan rejected.")
		return nil
	},
}

var plansResubmitCmd = &cobra.Command{
	Use:                "resubmit <plan-id> [--input value ...]",
	Short:              "Revise a pending plan's inputs and resubmit it for approval",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			return cmd.Help()
		}
		planID := args[0]

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

		if err := run.Resubmit(cmd.Context(), planID, inputs); err != nil {
			return err
		}
		fmt.Println("Plan resubmitted for approval.")
		return nil
	},
}

func init() {
	plansListCmd.Flags().BoolVar(&plansAllFlag, "all", false, "include decided plans")
	plansApproveCmd.Flags().StringVar(&plansAsRole, "as", "", "role id granting approval")
	plansRejectCmd.Flags().StringVar(&plansRejectRole, "as", "", "role id rejecting the plan")
	plansRejectCmd.Flags().StringVar(&plansRejectWhy, "reason", "", "why the plan was rejected")
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansApproveCmd)
	plansCmd.AddCommand(plansRejectCmd)
	plansCmd.AddCommand(plansResubmitCmd)
	rootCmd.AddCommand(plansCmd)
}
