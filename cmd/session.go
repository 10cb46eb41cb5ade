package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show and adjust the current session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session state",
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

		r, err := a.roles.Get(cmd.Context(), sess.ActingAs)
		if err != nil {
			return err
		}

		fmt.Printf("Acting as: %s (%s)\n", r.Title, r.ID)
		fmt.Printf("Confidence: %.2f\n", sess.Confidence)
		focus := sess.CurrentFocus
		if focus == "" {
			focus = "none"
		}
		fmt.Printf("Focus: %s\n", focus)
		return nil
	},
}

var sessionFocusCmd = &cobra.Command{
	Use:   "focus <text>",
	Short: "Set the session's current focus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.engine.EnsureSession(cmd.Context()); err != nil {
			return err
		}
		if _, err := a.engine.SetFocus(cmd.Context(), strings.Join(args, " ")); err != nil {
			return err
		}

		fmt.Println("Focus updated.")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionFocusCmd)
	rootCmd.AddCommand(sessionCmd)
}
