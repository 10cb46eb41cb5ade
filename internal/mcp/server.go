// Package mcp exposes the recipe engine to AI agents over the Model
// Context Protocol. Tools cover running recipes, inspecting the
// company, switching roles, and working the approval queue.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/recipe"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/runner"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes business assistant tools.
type Server struct {
	companies *company.Store
	roles     *role.Store
	artifacts *artifact.Store
	changes   *changelog.Store
	engine    *contextengine.Engine
	registry  *recipe.Registry
	runner    *runner.Runner
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(companies *company.Store, roles *role.Store, artifacts *artifact.Store, changes *changelog.Store, engine *contextengine.Engine, registry *recipe.Registry, run *runner.Runner) *Server {
	s := &Server{
		companies: companies,
		roles:     roles,
		artifacts: artifacts,
		changes:   changes,
		engine:    engine,
		registry:  registry,
		runner:    run,
	}

	s.mcp = server.NewMCPServer(
		"bizmate",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listRecipesTool, s.handleListRecipes)
	s.mcp.AddTool(runRecipeTool, s.handleRunRecipe)
	s.mcp.AddTool(getCompanyTool, s.handleGetCompany)
	s.mcp.AddTool(listRolesTool, s.handleListRoles)
	s.mcp.AddTool(switchRoleTool, s.handleSwitchRole)
	s.mcp.AddTool(setFocusTool, s.handleSetFocus)
	s.mcp.AddTool(getArtifactTool, s.handleGetArtifact)
	s.mcp.AddTool(approvePlanTool, s.handleApprovePlan)
	s.mcp.AddTool(rejectPlanTool, s.handleRejectPlan)
	s.mcp.AddTool(queryChangelogTool, s.handleQueryChangelog)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
