package cmd

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets coding agents read and change projects, issues and comments.
Configure the agent with:

  {
    "mcpServers": {
      "sj": { "command": "sj", "args": ["mcp"] }
    }
  }

Available tools: sj_list_projects, sj_create_project, sj_list_issues,
sj_get_issue, sj_create_issue, sj_update_issue, sj_update_status,
sj_assign_issue, sj_add_comment, sj_link_issues, sj_list_users,
sj_list_categories`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := getTracker()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()
		return mcp.NewServer(t).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
