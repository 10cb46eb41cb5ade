package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/bizmate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bizmate configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to set up your company profile and LLM provider and generates a .bizmate.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(config.DefaultConfig())
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
