package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listRecipesTool defines the list_recipes MCP tool.
var listRecipesTool = mcp.NewTool("list_recipes",
	mcp.WithDescription("List the available recipes with their required inputs and whether they read or change business state."),
)

// runRecipeTool defines the run_recipe MCP tool.
var runRecipeTool = mcp.NewTool("run_recipe",
	mcp.WithDescription("Run a recipe as the session's acting role. Write and execute recipes may return a pending approval instead of a result."),
	mcp.WithString("recipe_id",
		mcp.Required(),
		mcp.Description("ID of the recipe to run, e.g. business-snapshot"),
	),
	mcp.WithObject("inputs",
		mcp.Description("Recipe inputs as a flat string-to-string object"),
	),
)

// getCompanyTool defines the get_company MCP tool.
var getCompanyTool = mcp.NewTool("get_company",
	mcp.WithDescription("Get the company profile including goals, constraints, systems, and the current context summary."),
)

// listRolesTool defines the list_roles MCP tool.
var listRolesTool = mcp.NewTool("list_roles",
	mcp.WithDescription("List the roles defined for the company with their decision scopes and recipe grants."),
)

// switchRoleTool defines the switch_role MCP tool.
var switchRoleTool = mcp.NewTool("switch_role",
	mcp.WithDescription("Switch the session's acting role. The role must belong to the session's company."),
	mcp.WithString("role_id",
		mcp.Required(),
		mcp.Description("ID of the role to act as"),
	),
)

// setFocusTool defines the set_focus MCP tool.
var setFocusTool = mcp.NewTool("set_focus",
	mcp.WithDescription("Set the session's current focus, which is woven into the grounding of every recipe run."),
	mcp.WithString("focus",
		mcp.Required(),
		mcp.Description("Free-form description of what the user is working on"),
	),
)

// getArtifactTool defines the get_artifact MCP tool.
var getArtifactTool = mcp.NewTool("get_artifact",
	mcp.WithDescription("Get the latest artifact of a given type, or a specific artifact by id."),
	mcp.WithString("type",
		mcp.Description("Artifact type to fetch the latest version of"),
		mcp.Enum("business-snapshot", "plan", "company-brief", "weekly-priorities"),
	),
	mcp.WithString("id",
		mcp.Description("Artifact id, overrides type when set"),
	),
)

// approvePlanTool defines the approve_plan MCP tool.
var approvePlanTool = mcp.NewTool("approve_plan",
	mcp.WithDescription("Approve a pending plan as the given role and execute it."),
	mcp.WithString("plan_id",
		mcp.Required(),
		mcp.Description("Artifact id of the pending plan"),
	),
	mcp.WithString("approver_role_id",
		mcp.Required(),
		mcp.Description("ID of the role granting approval"),
	),
)

// rejectPlanTool defines the reject_plan MCP tool.
var rejectPlanTool = mcp.NewTool("reject_plan",
	mcp.WithDescription("Reject a pending plan as the given role."),
	mcp.WithString("plan_id",
		mcp.Required(),
		mcp.Description("Artifact id of the pending plan"),
	),
	mcp.WithString("approver_role_id",
		mcp.Required(),
		mcp.Description("ID of the role rejecting the plan"),
	),
	mcp.WithString("reason",
		mcp.Description("Why the plan was rejected"),
	),
)

// queryChangelogTool defines the query_changelog MCP tool.
var queryChangelogTool = mcp.NewTool("query_changelog",
	mcp.WithDescription("Query the audit trail of business state changes, newest first."),
	mcp.WithString("entity_type",
		mcp.Description("Filter by entity type"),
		mcp.Enum("company", "role", "artifact", "session"),
	),
	mcp.WithString("entity_id",
		mcp.Description("Filter by entity id"),
	),
	mcp.WithString("action",
		mcp.Description("Filter by action"),
		mcp.Enum("create", "update", "delete"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
)
