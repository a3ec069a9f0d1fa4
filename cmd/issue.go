package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/output"
	"github.com/joescharf/simplejira/internal/tracker"
)

var (
	issueTitle    string
	issueSummary  string
	issuePoints   int
	issueAssignee string
	issueReporter string
	issueLinks    []string
	issueStatus   string
	issueAuthor   string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
	Long:  "Create, edit, move, assign, link and comment on issues.",
}

var issueListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List the issues of a project in creation order",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun(args[0])
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show an issue with its links and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(args[0])
	},
}

var issueCreateCmd = &cobra.Command{
	Use:     "create <project> <title>",
	Aliases: []string{"add"},
	Short:   "Create an issue in Todo",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCreateRun(args[0], args[1], cmd.Flags().Changed("points"))
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <issue-id>",
	Short: "Overwrite title, summary and story points",
	Long: `Overwrite the title, summary and story points of an issue.

Fields not given keep their current value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		return issueUpdateRun(args[0], f.Changed("title"), f.Changed("summary"), f.Changed("points"))
	},
}

var issueStatusCmd = &cobra.Command{
	Use:   "status <issue-id> <Todo|InProgress|Done>",
	Short: "Move an issue to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueStatusRun(args[0], args[1])
	},
}

var issueAssignCmd = &cobra.Command{
	Use:   "assign <issue-id> [user-id]",
	Short: "Assign an issue, or unassign it when no user is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var assignee string
		if len(args) > 1 {
			assignee = args[1]
		}
		return issueAssignRun(args[0], assignee)
	},
}

var issueLinkCmd = &cobra.Command{
	Use:   "link <issue-id> <target-issue-id>",
	Short: "Link two issues in both directions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueLinkRun(args[0], args[1])
	},
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <issue-id> <body>",
	Short: "Add a Markdown comment to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCommentRun(args[0], args[1])
	},
}

var issueCommentsCmd = &cobra.Command{
	Use:   "comments <issue-id>",
	Short: "List the comments of an issue, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCommentsRun(args[0])
	},
}

func init() {
	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "Only issues with this status")

	issueCreateCmd.Flags().StringVar(&issueSummary, "summary", "", "Summary (default: the title)")
	issueCreateCmd.Flags().IntVar(&issuePoints, "points", 0, "Story points")
	issueCreateCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Assignee user id")
	issueCreateCmd.Flags().StringVar(&issueReporter, "reporter", "", "Reporter user id")
	issueCreateCmd.Flags().StringSliceVar(&issueLinks, "link", nil, "Issue id to link (repeatable)")

	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&issueSummary, "summary", "", "New summary")
	issueUpdateCmd.Flags().IntVar(&issuePoints, "points", 0, "New story points")
	issueUpdateCmd.Flags().Bool("clear-points", false, "Remove the story points")

	issueCommentCmd.Flags().StringVar(&issueAuthor, "author", "", "Author user id")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueStatusCmd)
	issueCmd.AddCommand(issueAssignCmd)
	issueCmd.AddCommand(issueLinkCmd)
	issueCmd.AddCommand(issueCommentCmd)
	issueCmd.AddCommand(issueCommentsCmd)
	rootCmd.AddCommand(issueCmd)
}

// renderIssueTable prints issues one per row.
func renderIssueTable(issues []tracker.IssueView) error {
	table := ui.Table([]string{"ID", "Title", "Status", "Points", "Assignee", "Comments", "Links"})
	for _, issue := range issues {
		_ = table.Append([]string{
			issue.ID,
			issue.Title,
			output.StatusColor(string(issue.Status)),
			output.Points(issue.StoryPoints),
			output.OrDash(refName(issue.Assignee)),
			strconv.Itoa(issue.CommentsCount),
			strconv.Itoa(len(issue.LinkedIssueIDs)),
		})
	}
	return table.Render()
}

func issueListRun(projectRef string) error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()
	p, err := resolveProject(ctx, t, projectRef)
	if err != nil {
		return err
	}
	issues, err := t.ListIssues(ctx, p.ID)
	if err != nil {
		return err
	}

	if issueStatus != "" {
		filtered := issues[:0]
		for _, issue := range issues {
			if strings.EqualFold(string(issue.Status), issueStatus) {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}

	if jsonOut {
		return ui.JSON(issues)
	}
	if len(issues) == 0 {
		ui.Info("No issues found.")
		return nil
	}
	return renderIssueTable(issues)
}

func issueShowRun(id string) error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()
	issue, err := t.GetIssue(ctx, id)
	if err != nil {
		return err
	}
	comments, err := t.ListComments(ctx, id)
	if err != nil {
		return err
	}

	if jsonOut {
		return ui.JSON(struct {
			*tracker.IssueView
			Comments []tracker.CommentView `json:"comments"`
		}{issue, comments})
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(issue.Title), output.StatusColor(string(issue.Status)))
	fmt.Fprintf(ui.Out, "  ID:       %s\n", issue.ID)
	fmt.Fprintf(ui.Out, "  Points:   %s\n", output.Points(issue.StoryPoints))
	fmt.Fprintf(ui.Out, "  Assignee: %s\n", output.OrDash(refName(issue.Assignee)))
	fmt.Fprintf(ui.Out, "  Reporter: %s\n", output.OrDash(refName(issue.Reporter)))
	if issue.Summary != "" {
		fmt.Fprintf(ui.Out, "\n%s\n", issue.Summary)
	}

	if len(issue.LinkedIssueIDs) > 0 {
		fmt.Fprintf(ui.Out, "\nLinked issues:\n")
		for _, linkedID := range issue.LinkedIssueIDs {
			title := linkedID
			if linked, err := t.GetIssue(ctx, linkedID); err == nil {
				title = fmt.Sprintf("%s  %s", linkedID, linked.Title)
			}
			fmt.Fprintf(ui.Out, "  - %s\n", title)
		}
	}

	if len(comments) > 0 {
		fmt.Fprintf(ui.Out, "\nComments:\n")
		printComments(comments)
	}
	return nil
}

func printComments(comments []tracker.CommentView) {
	for _, c := range comments {
		author := "Anonymous"
		if c.Author != nil {
			author = c.Author.Name
		}
		fmt.Fprintf(ui.Out, "  %s %s\n", output.Cyan(author), c.CreatedAt.Local().Format(time.DateTime))
		for _, line := range strings.Split(c.Body, "\n") {
			fmt.Fprintf(ui.Out, "    %s\n", line)
		}
	}
}

func issueCreateRun(projectRef, title string, pointsSet bool) error {
	if dryRun {
		ui.DryRunMsg("Would create issue %q in %s", title, projectRef)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()
	p, err := resolveProject(ctx, t, projectRef)
	if err != nil {
		return err
	}

	req := tracker.CreateIssueRequest{
		Title:          title,
		Summary:        issueSummary,
		AssigneeID:     optionalFlag(issueAssignee),
		ReporterID:     optionalFlag(issueReporter),
		LinkedIssueIDs: issueLinks,
	}
	if pointsSet {
		points := issuePoints
		req.StoryPoints = &points
	}
	issue, err := t.CreateIssue(ctx, p.ID, req)
	if err != nil {
		return err
	}

	if jsonOut {
		return ui.JSON(issue)
	}
	ui.Success("Created issue %s in %s", output.Cyan(issue.ID), p.Key)
	return nil
}

// issueUpdateRun overwrites the issue with the flags that were given and the
// current values for the rest.
func issueUpdateRun(id string, titleSet, summarySet, pointsSet bool) error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	ctx := context.Background()
	current, err := t.GetIssue(ctx, id)
	if err != nil {
		return err
	}

	req := tracker.UpdateIssueRequest{
		Title:       current.Title,
		Summary:     current.Summary,
		StoryPoints: current.StoryPoints,
	}
	if titleSet {
		req.Title = issueTitle
	}
	if summarySet {
		req.Summary = issueSummary
	}
	if pointsSet {
		points := issuePoints
		req.StoryPoints = &points
	}
	if clearPoints, _ := issueUpdateCmd.Flags().GetBool("clear-points"); clearPoints {
		req.StoryPoints = nil
	}

	if dryRun {
		ui.DryRunMsg("Would update issue %s", id)
		return nil
	}
	if err := t.UpdateIssue(ctx, id, req); err != nil {
		return err
	}
	ui.Success("Updated issue %s", output.Cyan(id))
	return nil
}

func issueStatusRun(id, status string) error {
	if dryRun {
		ui.DryRunMsg("Would move issue %s to %s", id, status)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	if err := t.UpdateStatus(context.Background(), id, models.IssueStatus(status)); err != nil {
		return err
	}
	ui.Success("Issue %s is now %s", output.Cyan(id), output.StatusColor(status))
	return nil
}

func issueAssignRun(id, assignee string) error {
	if dryRun {
		ui.DryRunMsg("Would assign issue %s to %q", id, assignee)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	if err := t.AssignIssue(context.Background(), id, optionalFlag(assignee)); err != nil {
		return err
	}
	if strings.TrimSpace(assignee) == "" {
		ui.Success("Issue %s is unassigned", output.Cyan(id))
		return nil
	}
	ui.Success("Assigned issue %s to %s", output.Cyan(id), assignee)
	return nil
}

func issueLinkRun(id, target string) error {
	if dryRun {
		ui.DryRunMsg("Would link issue %s with %s", id, target)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	if err := t.Link(context.Background(), id, target); err != nil {
		return err
	}
	ui.Success("Linked %s and %s", output.Cyan(id), output.Cyan(target))
	return nil
}

func issueCommentRun(id, body string) error {
	if dryRun {
		ui.DryRunMsg("Would comment on issue %s", id)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	c, err := t.AddComment(context.Background(), id, tracker.AddCommentRequest{
		Body:     body,
		AuthorID: optionalFlag(issueAuthor),
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return ui.JSON(c)
	}
	ui.Success("Added comment %s", c.ID)
	return nil
}

func issueCommentsRun(id string) error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	comments, err := t.ListComments(context.Background(), id)
	if err != nil {
		return err
	}
	if jsonOut {
		return ui.JSON(comments)
	}
	if len(comments) == 0 {
		ui.Info("No comments.")
		return nil
	}
	printComments(comments)
	return nil
}
