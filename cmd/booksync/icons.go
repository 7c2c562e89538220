package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/booksync/internal/cli"
	"github.com/jackzampolin/booksync/internal/config"
	"github.com/jackzampolin/booksync/internal/iconsync"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "Normalize page icons from reading status",
	Long: `Walk every record in the database and set its icon to the glyph
expected for its reading status. Records whose icon already matches are
skipped. Unrecognized statuses get the default to-read glyph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		throttle := reconcile.NewInterval(cfg.IconInterval())
		cm.OnChange(func(c *config.Config) {
			throttle.SetInterval(c.IconInterval())
		})
		cm.WatchConfig()

		syncer := &iconsync.Syncer{
			Notion:     newNotionClient(cfg),
			StatusProp: cfg.Notion.Properties.Status,
			TitleProp:  cfg.Notion.Properties.Title,
			Throttle:   throttle,
			Logger:     runLogger(),
		}

		counts, runErr := syncer.Run(ctx)

		fmt.Println("Summary:")
		if err := cli.Output(counts); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(iconsCmd)
}
