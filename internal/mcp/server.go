package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Server exposes a tracker as MCP tools.
type Server struct {
	tracker tracker.Tracker
}

// NewServer creates the MCP server wrapper around t.
func NewServer(t tracker.Tracker) *Server {
	return &Server{tracker: t}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("sj", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listProjectsTool())
	srv.AddTool(s.createProjectTool())
	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.getIssueTool())
	srv.AddTool(s.createIssueTool())
	srv.AddTool(s.updateIssueTool())
	srv.AddTool(s.updateStatusTool())
	srv.AddTool(s.assignIssueTool())
	srv.AddTool(s.addCommentTool())
	srv.AddTool(s.linkIssuesTool())
	srv.AddTool(s.listUsersTool())
	srv.AddTool(s.listCategoriesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// sj_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_list_projects",
		mcp.WithDescription("List projects ordered by name. Returns a JSON array of projects with id, name, key, type, avatar, category and lead."),
		mcp.WithString("search", mcp.Description("Case-insensitive substring of the project name or key")),
		mcp.WithString("category_id", mcp.Description("Only projects in this category")),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.tracker.ListProjects(ctx, tracker.ProjectFilter{
		Search:     request.GetString("search", ""),
		CategoryID: request.GetString("category_id", ""),
	})
	if err != nil {
		return toolError("failed to list projects", err), nil
	}
	return jsonResult(projects)
}

// sj_create_project
func (s *Server) createProjectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_create_project",
		mcp.WithDescription("Create a project. The key defaults to the name, normalized to upper-case letters and digits. Returns the project as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("key", mcp.Description("Project key (2-10 characters after normalization)")),
		mcp.WithString("type", mcp.Description("Project type (default: Software)")),
		mcp.WithString("avatar", mcp.Description("Avatar URL or text (default: first two characters of the key)")),
		mcp.WithString("category_id", mcp.Description("Category id")),
		mcp.WithString("lead_id", mcp.Description("Lead user id")),
	)
	return tool, s.handleCreateProject
}

func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	project, err := s.tracker.CreateProject(ctx, tracker.CreateProjectRequest{
		Name:       name,
		Key:        request.GetString("key", ""),
		Type:       request.GetString("type", ""),
		Avatar:     request.GetString("avatar", ""),
		CategoryID: optionalArg(request, "category_id"),
		LeadID:     optionalArg(request, "lead_id"),
	})
	if err != nil {
		return toolError("failed to create project", err), nil
	}
	return jsonResult(project)
}

// ---------------------------------------------------------------------------
// Issues
// ---------------------------------------------------------------------------

// sj_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_list_issues",
		mcp.WithDescription("List the issues of a project in creation order. The project may be given by id, key or name."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id, key or name")),
		mcp.WithString("status", mcp.Description("Only issues with this status: Todo, InProgress, Done")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	project, err := s.resolveProject(ctx, ref)
	if err != nil {
		return toolError("failed to resolve project", err), nil
	}
	issues, err := s.tracker.ListIssues(ctx, project.ID)
	if err != nil {
		return toolError("failed to list issues", err), nil
	}

	if status := request.GetString("status", ""); status != "" {
		filtered := make([]tracker.IssueView, 0, len(issues))
		for _, issue := range issues {
			if string(issue.Status) == status {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}
	return jsonResult(issues)
}

// sj_get_issue
func (s *Server) getIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_get_issue",
		mcp.WithDescription("Get one issue with its comments."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id")),
	)
	return tool, s.handleGetIssue
}

func (s *Server) handleGetIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	issue, err := s.tracker.GetIssue(ctx, id)
	if err != nil {
		return toolError("failed to get issue", err), nil
	}
	comments, err := s.tracker.ListComments(ctx, id)
	if err != nil {
		return toolError("failed to list comments", err), nil
	}
	return jsonResult(struct {
		*tracker.IssueView
		Comments []tracker.CommentView `json:"comments"`
	}{issue, comments})
}

// sj_create_issue
func (s *Server) createIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_create_issue",
		mcp.WithDescription("Create an issue in a project. New issues start in Todo. Returns the issue as JSON."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id, key or name")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("summary", mcp.Description("Issue summary (defaults to the title)")),
		mcp.WithNumber("story_points", mcp.Description("Non-negative story points")),
		mcp.WithString("assignee_id", mcp.Description("Assignee user id")),
		mcp.WithString("reporter_id", mcp.Description("Reporter user id")),
		mcp.WithString("linked_issue_ids", mcp.Description("Comma-separated ids of issues to link; unknown ids are skipped")),
	)
	return tool, s.handleCreateIssue
}

func (s *Server) handleCreateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	project, err := s.resolveProject(ctx, ref)
	if err != nil {
		return toolError("failed to resolve project", err), nil
	}

	issue, err := s.tracker.CreateIssue(ctx, project.ID, tracker.CreateIssueRequest{
		Title:          title,
		Summary:        request.GetString("summary", ""),
		StoryPoints:    pointsArg(request),
		AssigneeID:     optionalArg(request, "assignee_id"),
		ReporterID:     optionalArg(request, "reporter_id"),
		LinkedIssueIDs: splitIDs(request.GetString("linked_issue_ids", "")),
	})
	if err != nil {
		return toolError("failed to create issue", err), nil
	}
	return jsonResult(issue)
}

// sj_update_issue
func (s *Server) updateIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_update_issue",
		mcp.WithDescription("Overwrite the title, summary and story points of an issue. Omitted story points are cleared."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		mcp.WithString("summary", mcp.Description("New summary")),
		mcp.WithNumber("story_points", mcp.Description("New story points")),
	)
	return tool, s.handleUpdateIssue
}

func (s *Server) handleUpdateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	err = s.tracker.UpdateIssue(ctx, id, tracker.UpdateIssueRequest{
		Title:       title,
		Summary:     request.GetString("summary", ""),
		StoryPoints: pointsArg(request),
	})
	if err != nil {
		return toolError("failed to update issue", err), nil
	}
	return s.issueResult(ctx, id)
}

// sj_update_status
func (s *Server) updateStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_update_status",
		mcp.WithDescription("Move an issue to another status. Any status may follow any other."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Todo, InProgress or Done")),
	)
	return tool, s.handleUpdateStatus
}

func (s *Server) handleUpdateStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: status"), nil
	}
	if err := s.tracker.UpdateStatus(ctx, id, models.IssueStatus(status)); err != nil {
		return toolError("failed to update status", err), nil
	}
	return s.issueResult(ctx, id)
}

// sj_assign_issue
func (s *Server) assignIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_assign_issue",
		mcp.WithDescription("Assign an issue to a user, or clear the assignee when assignee_id is omitted."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id")),
		mcp.WithString("assignee_id", mcp.Description("User id; omit to unassign")),
	)
	return tool, s.handleAssignIssue
}

func (s *Server) handleAssignIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	if err := s.tracker.AssignIssue(ctx, id, optionalArg(request, "assignee_id")); err != nil {
		return toolError("failed to assign issue", err), nil
	}
	return s.issueResult(ctx, id)
}

// sj_add_comment
func (s *Server) addCommentTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_add_comment",
		mcp.WithDescription("Add a Markdown comment to an issue. Returns the comment as JSON."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment body")),
		mcp.WithString("author_id", mcp.Description("Author user id")),
	)
	return tool, s.handleAddComment
}

func (s *Server) handleAddComment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: body"), nil
	}
	comment, err := s.tracker.AddComment(ctx, id, tracker.AddCommentRequest{
		Body:     body,
		AuthorID: optionalArg(request, "author_id"),
	})
	if err != nil {
		return toolError("failed to add comment", err), nil
	}
	return jsonResult(comment)
}

// sj_link_issues
func (s *Server) linkIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_link_issues",
		mcp.WithDescription("Link two issues in both directions. Linking an already linked pair succeeds without change."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Source issue id")),
		mcp.WithString("target_issue_id", mcp.Required(), mcp.Description("Target issue id")),
	)
	return tool, s.handleLinkIssues
}

func (s *Server) handleLinkIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	target, err := request.RequireString("target_issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: target_issue_id"), nil
	}
	if err := s.tracker.Link(ctx, id, target); err != nil {
		return toolError("failed to link issues", err), nil
	}
	return s.issueResult(ctx, id)
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

// sj_list_users
func (s *Server) listUsersTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_list_users",
		mcp.WithDescription("List users ordered by name. Use the ids for lead, assignee, reporter and author."),
	)
	return tool, s.handleListUsers
}

func (s *Server) handleListUsers(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := s.tracker.ListUsers(ctx)
	if err != nil {
		return toolError("failed to list users", err), nil
	}
	return jsonResult(users)
}

// sj_list_categories
func (s *Server) listCategoriesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sj_list_categories",
		mcp.WithDescription("List project categories ordered by name."),
	)
	return tool, s.handleListCategories
}

func (s *Server) handleListCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.tracker.ListCategories(ctx)
	if err != nil {
		return toolError("failed to list categories", err), nil
	}
	return jsonResult(categories)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// resolveProject finds a project by key or name first, then by id.
func (s *Server) resolveProject(ctx context.Context, ref string) (*tracker.ProjectView, error) {
	ref = strings.TrimSpace(ref)
	projects, err := s.tracker.ListProjects(ctx, tracker.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Key, ref) || projects[i].Name == ref {
			return &projects[i], nil
		}
	}
	return s.tracker.GetProject(ctx, ref)
}

func (s *Server) issueResult(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	issue, err := s.tracker.GetIssue(ctx, id)
	if err != nil {
		return toolError("failed to get issue", err), nil
	}
	return jsonResult(issue)
}

// toolError reports rule violations by their message alone and anything
// else with context.
func toolError(action string, err error) *mcp.CallToolResult {
	if tracker.KindOf(err) != 0 {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func optionalArg(request mcp.CallToolRequest, name string) *string {
	v := strings.TrimSpace(request.GetString(name, ""))
	if v == "" {
		return nil
	}
	return &v
}

// pointsArg reads story_points as a number or a numeric string.
func pointsArg(request mcp.CallToolRequest) *int {
	raw, ok := request.GetArguments()["story_points"]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
