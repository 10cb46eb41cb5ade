package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/bizmate/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing recipe, company, role, and approval tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.buildRunner()
		if err != nil {
			return err
		}

		if _, err := a.engine.EnsureSession(cmd.Context()); err != nil {
			return fmt.Errorf("bootstrapping session: %w", err)
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintln(os.Stderr, "bizmate MCP server started on stdio")

		srv := mcpserver.NewServer(a.companies, a.roles, a.artifacts, a.changes, a.engine, a.registry, run)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
