package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/output"
	"github.com/joescharf/simplejira/internal/tracker"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "List people",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users ordered by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return userListRun()
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage project categories",
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories ordered by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryListRun()
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:     "create <name>",
	Aliases: []string{"add"},
	Short:   "Create a category",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryCreateRun(args[0])
	},
}

func init() {
	userCmd.AddCommand(userListCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryCreateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(categoryCmd)
}

func renderRefs(refs []tracker.Ref, empty string) error {
	if jsonOut {
		return ui.JSON(refs)
	}
	if len(refs) == 0 {
		ui.Info(empty)
		return nil
	}
	table := ui.Table([]string{"Name", "ID"})
	for _, r := range refs {
		_ = table.Append([]string{r.Name, r.ID})
	}
	return table.Render()
}

func userListRun() error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	users, err := t.ListUsers(context.Background())
	if err != nil {
		return err
	}
	return renderRefs(users, "No users.")
}

func categoryListRun() error {
	t, err := getTracker()
	if err != nil {
		return err
	}
	categories, err := t.ListCategories(context.Background())
	if err != nil {
		return err
	}
	return renderRefs(categories, "No categories.")
}

func categoryCreateRun(name string) error {
	if dryRun {
		ui.DryRunMsg("Would create category %q", name)
		return nil
	}
	t, err := getTracker()
	if err != nil {
		return err
	}
	c, err := t.CreateCategory(context.Background(), name)
	if err != nil {
		return err
	}
	if jsonOut {
		return ui.JSON(c)
	}
	ui.Success("Created category %s (%s)", output.Cyan(c.Name), c.ID)
	return nil
}
