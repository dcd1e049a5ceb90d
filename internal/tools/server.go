package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/trackerops/groomer/internal/config"
	"github.com/trackerops/groomer/internal/jira"
	"github.com/trackerops/groomer/internal/stale"
)

// NewServer wires all MCP tools and creates the server instance. This is the
// composition root: it builds the Jira client and pipeline runner and injects
// them into the tools. No business logic lives here.
func NewServer(cfg *config.Config, version string) *server.MCPServer {
	client := jira.NewClient(cfg.URL, cfg.Username, cfg.Token)
	source := &jira.SnapshotSource{Client: client}
	runner := stale.NewRunner(source, client)

	s := server.NewMCPServer(
		"groomer",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	searchTool := &SearchTool{Client: client}
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	getTool := &GetTool{Client: client}
	s.AddTool(getTool.Definition(), getTool.Handle)

	createTool := &CreateTool{Client: client}
	s.AddTool(createTool.Definition(), createTool.Handle)

	updateTool := &UpdateTool{Client: client}
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	commentTool := &AddCommentTool{Client: client}
	s.AddTool(commentTool.Definition(), commentTool.Handle)

	findStaleTool := &FindStaleTool{Runner: runner, DefaultProject: cfg.Project}
	s.AddTool(findStaleTool.Definition(), findStaleTool.Handle)

	commentStaleTool := &CommentStaleTool{Runner: runner, DefaultProject: cfg.Project}
	s.AddTool(commentStaleTool.Definition(), commentStaleTool.Handle)

	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func serverInstructions() string {
	return `Groomer exposes Jira hygiene tools. Write operations
(jira_add_comment, jira_comment_on_stale_issues) default to dry_run and never
change anything until called again with mode=live. Always show the user the
dry_run preview before going live.`
}
