package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/booksync/internal/cli"
	"github.com/jackzampolin/booksync/internal/config"
	"github.com/jackzampolin/booksync/internal/faillog"
	"github.com/jackzampolin/booksync/internal/pagefill"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

var pagesForce bool

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Backfill page counts from the lookup service",
	Long: `Walk every record in the database and fill in the page-count
property from the Google Books lookup. Records that already have a page
count are skipped unless --force is set, in which case they are re-fetched
and overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		throttle := reconcile.NewInterval(cfg.PagesInterval())
		cm.OnChange(func(c *config.Config) {
			throttle.SetInterval(c.PagesInterval())
		})
		cm.WatchConfig()

		bf := &pagefill.Backfiller{
			Notion:    newNotionClient(cfg),
			Books:     newBooksClient(cfg),
			Force:     pagesForce,
			ISBNProp:  cfg.Notion.Properties.ISBN,
			PagesProp: cfg.Notion.Properties.Pages,
			TitleProp: cfg.Notion.Properties.Title,
			Throttle:  throttle,
			Logger:    runLogger(),
		}

		res, runErr := bf.Run(ctx)

		// Flush before reporting so failed identifiers survive even a
		// fatal page-fetch error.
		if path, err := faillog.New(cfg.FailureLogDir).Flush(res.Failed); err != nil {
			slog.Error("failed to write failure log", "error", err)
		} else if path != "" {
			fmt.Printf("Wrote failure log: %s\n", path)
		}

		fmt.Println("Summary:")
		if err := cli.Output(res.Counts); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	pagesCmd.Flags().BoolVar(&pagesForce, "force", false, "re-fetch and overwrite existing page counts")
	rootCmd.AddCommand(pagesCmd)
}
