package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/health"
	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/output"
	"github.com/joescharf/simplejira/internal/tracker"
)

var (
	projectSearch   string
	projectCategory string
	projectKey      string
	projectType     string
	projectAvatar   string
	projectLead     string
	projectID       string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "List, create and show projects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects ordered by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectCreateCmd = &cobra.Command{
	Use:     "create <name>",
	Aliases: []string{"add"},
	Short:   "Create a project",
	Long: `Create a project. The key defaults to the name with everything but
letters and digits removed, upper-cased and cut to 10 characters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectCreateRun(args[0])
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <key-name-or-id>",
	Short: "Show a project and its board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

func init() {
	projectListCmd.Flags().StringVarP(&projectSearch, "search", "s", "", "Case-insensitive substring of name or key")
	projectListCmd.Flags().StringVar(&projectCategory, "category", "", "Category id")

	projectCreateCmd.Flags().StringVar(&projectKey, "key", "", "Project key (default derived from name)")
	projectCreateCmd.Flags().StringVar(&projectType, "type", "", "Project type (default Software)")
	projectCreateCmd.Flags().StringVar(&projectAvatar, "avatar", "", "Avatar URL or text")
	projectCreateCmd.Flags().StringVar(&projectCategory, "category", "", "Category id")
	projectCreateCmd.Flags().StringVar(&projectLead, "lead", "", "Lead user id")
	projectCreateCmd.Flags().StringVar(&projectID, "id", "", "Explicit project id (UUID or ULID)")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectShowCmd)
	rootCmd.AddCommand(projectCmd)
}

// resolveProject finds a project by key or name first, then by id.
func resolveProject(ctx context.Context, t tracker.Tracker, ref string) (*tracker.ProjectView, error) {
	ref = strings.TrimSpace(ref)
	projects, err := t.ListProjects(ctx, tracker.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Key, ref) || projects[i].Name == ref {
			return &projects[i], nil
		}
	}
	return t.GetProject(ctx, ref)
}

// optionalFlag turns an empty flag value into nil.
func optionalFlag(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func refName(r *tracker.Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func projectListRun() error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	projects, err := t.ListProjects(context.Background(), tracker.ProjectFilter{
		Search:     projectSearch,
		CategoryID: projectCategory,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return ui.JSON(projects)
	}
	if len(projects) == 0 {
		ui.Info("No projects found.")
		return nil
	}

	table := ui.Table([]string{"Key", "Name", "Type", "Category", "Lead", "ID"})
	for _, p := range projects {
		_ = table.Append([]string{
			output.Cyan(p.Key),
			p.Name,
			p.Type,
			output.OrDash(refName(p.Category)),
			output.OrDash(refName(p.Lead)),
			p.ID,
		})
	}
	return table.Render()
}

func projectCreateRun(name string) error {
	if dryRun {
		ui.DryRunMsg("Would create project %q", name)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	p, err := t.CreateProject(context.Background(), tracker.CreateProjectRequest{
		ID:         projectID,
		Name:       name,
		Key:        projectKey,
		Type:       projectType,
		Avatar:     projectAvatar,
		CategoryID: optionalFlag(projectCategory),
		LeadID:     optionalFlag(projectLead),
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return ui.JSON(p)
	}
	ui.Success("Created project %s (%s)", output.Cyan(p.Key), p.Name)
	ui.VerboseLog("id %s", p.ID)
	return nil
}

func projectShowRun(ref string) error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()
	p, err := resolveProject(ctx, t, ref)
	if err != nil {
		return err
	}
	issues, err := t.ListIssues(ctx, p.ID)
	if err != nil {
		return err
	}

	summary := health.Summarize(issues)
	if jsonOut {
		return ui.JSON(struct {
			*tracker.ProjectView
			Health *health.Summary     `json:"health"`
			Issues []tracker.IssueView `json:"issues"`
		}{p, summary, issues})
	}

	fmt.Fprintf(ui.Out, "%s %s  %s\n", p.Avatar, output.Cyan(p.Key), p.Name)
	fmt.Fprintf(ui.Out, "  Type:     %s\n", p.Type)
	fmt.Fprintf(ui.Out, "  Category: %s\n", output.OrDash(refName(p.Category)))
	fmt.Fprintf(ui.Out, "  Lead:     %s\n", output.OrDash(refName(p.Lead)))
	fmt.Fprintf(ui.Out, "  ID:       %s\n", p.ID)
	fmt.Fprintf(ui.Out, "  Health:   %s/100  (%d todo, %d in progress, %d done; %d/%d points done)\n",
		healthColor(summary.Score.Total),
		summary.ByStatus[models.IssueStatusTodo], summary.ByStatus[models.IssueStatusInProgress],
		summary.ByStatus[models.IssueStatusDone], summary.DonePoints, summary.Points)
	fmt.Fprintln(ui.Out)

	if len(issues) == 0 {
		ui.Info("No issues yet.")
		return nil
	}
	return renderIssueTable(issues)
}

// healthColor returns the score colored by band.
func healthColor(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= 80:
		return output.Green(s)
	case score >= 50:
		return output.Yellow(s)
	default:
		return output.Red(s)
	}
}
