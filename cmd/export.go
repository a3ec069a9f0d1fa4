package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/tracker"
)

var (
	exportFormat  string
	exportType    string
	exportProject string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON, CSV, or Markdown",
	Long:  "Export projects or issues in various formats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "projects", "Data type: projects, issues")
	exportCmd.Flags().StringVar(&exportProject, "project", "", "Only issues of this project (key, name or id)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch exportType {
	case "projects":
		return exportProjects(ctx, t)
	case "issues":
		return exportIssues(ctx, t)
	default:
		return fmt.Errorf("unknown export type: %s (use: projects, issues)", exportType)
	}
}

// mdCell makes s safe inside a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func pointsCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func exportProjects(ctx context.Context, t tracker.Tracker) error {
	projects, err := t.ListProjects(ctx, tracker.ProjectFilter{})
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		return ui.JSON(projects)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"ID", "Key", "Name", "Type", "Avatar", "Category", "Lead"})
		for _, p := range projects {
			_ = w.Write([]string{p.ID, p.Key, p.Name, p.Type, p.Avatar, refName(p.Category), refName(p.Lead)})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Projects")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Key | Name | Type | Category | Lead |")
		fmt.Fprintln(ui.Out, "|-----|------|------|----------|------|")
		for _, p := range projects {
			fmt.Fprintf(ui.Out, "| %s | %s | %s | %s | %s |\n",
				mdCell(p.Key), mdCell(p.Name), mdCell(p.Type), mdCell(refName(p.Category)), mdCell(refName(p.Lead)))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

// projectIssues pairs a project with its issues for export.
type projectIssues struct {
	Project tracker.ProjectView
	Issues  []tracker.IssueView
}

func collectIssues(ctx context.Context, t tracker.Tracker) ([]projectIssues, error) {
	var projects []tracker.ProjectView
	if exportProject != "" {
		p, err := resolveProject(ctx, t, exportProject)
		if err != nil {
			return nil, err
		}
		projects = []tracker.ProjectView{*p}
	} else {
		var err error
		if projects, err = t.ListProjects(ctx, tracker.ProjectFilter{}); err != nil {
			return nil, err
		}
	}

	out := make([]projectIssues, 0, len(projects))
	for _, p := range projects {
		issues, err := t.ListIssues(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, projectIssues{Project: p, Issues: issues})
	}
	return out, nil
}

func exportIssues(ctx context.Context, t tracker.Tracker) error {
	groups, err := collectIssues(ctx, t)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		all := []tracker.IssueView{}
		for _, g := range groups {
			all = append(all, g.Issues...)
		}
		return ui.JSON(all)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"ID", "Project", "Title", "Status", "Points", "Assignee", "Reporter", "Comments", "Links"})
		for _, g := range groups {
			for _, i := range g.Issues {
				_ = w.Write([]string{
					i.ID, g.Project.Key, i.Title, string(i.Status), pointsCell(i.StoryPoints),
					refName(i.Assignee), refName(i.Reporter),
					strconv.Itoa(i.CommentsCount), strings.Join(i.LinkedIssueIDs, " "),
				})
			}
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Issues")
		for _, g := range groups {
			fmt.Fprintln(ui.Out)
			fmt.Fprintf(ui.Out, "## %s (%s)\n", g.Project.Name, g.Project.Key)
			fmt.Fprintln(ui.Out)
			if len(g.Issues) == 0 {
				fmt.Fprintln(ui.Out, "_No issues._")
				continue
			}
			fmt.Fprintln(ui.Out, "| Title | Status | Points | Assignee |")
			fmt.Fprintln(ui.Out, "|-------|--------|--------|----------|")
			for _, i := range g.Issues {
				fmt.Fprintf(ui.Out, "| %s | %s | %s | %s |\n",
					mdCell(i.Title), i.Status, pointsCell(i.StoryPoints), mdCell(refName(i.Assignee)))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}
