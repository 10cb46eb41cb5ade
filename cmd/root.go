package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bizmate",
	Short: "AI business assistant with role-aware recipes and approvals",
	Long: `Bizmate runs structured business recipes through an LLM, grounded in
your company profile and the role you are acting as. Write and execute
recipes go through an approval workflow, and every state change is
recorded in a versioned artifact store with an audit trail.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".bizmate.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
