package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/simplejira/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.jsonc>",
	Short: "Load users and categories from a JSONC file",
	Long: `Load users and categories into the local database.

The file is JSON with comments and trailing commas allowed:

  {
    "users": [{"id": "u-1", "name": "Jane Product"}],
    "categories": [{"name": "Marketing"}],
  }

Entries with an id replace the name of an existing entry with that id, so
seeding the same file twice changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return seedRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seedRun(path string) error {
	data, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would load %d users and %d categories from %s", len(data.Users), len(data.Categories), path)
		return nil
	}

	svc, err := getService()
	if err != nil {
		return err
	}
	if err := seed.Apply(context.Background(), svc, data); err != nil {
		return err
	}
	ui.Success("Loaded %d users and %d categories", len(data.Users), len(data.Categories))
	return nil
}
