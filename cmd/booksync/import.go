package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/booksync/internal/cli"
	"github.com/jackzampolin/booksync/internal/config"
	"github.com/jackzampolin/booksync/internal/faillog"
	"github.com/jackzampolin/booksync/internal/importer"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

var (
	importISBN  string
	importFile  string
	importSheet string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import books by ISBN",
	Long: `Import books into the database, one record per successful lookup.

Input sources (exactly one required):
  --isbn   a single identifier
  --file   a text file with one identifier per line
  --sheet  a spreadsheet export with ISBN/ISBN13 columns

Identifiers that cannot be resolved are written to a timestamped failure
log for manual retry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cm, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		throttle := reconcile.NewInterval(cfg.ImportInterval())
		cm.OnChange(func(c *config.Config) {
			throttle.SetInterval(c.ImportInterval())
		})
		cm.WatchConfig()

		im := &importer.Importer{
			Books:     newBooksClient(cfg),
			Notion:    newNotionClient(cfg),
			TitleProp: cfg.Notion.Properties.Title,
			ISBNProp:  cfg.Notion.Properties.ISBN,
			PagesProp: cfg.Notion.Properties.Pages,
			Throttle:  throttle,
			Logger:    runLogger(),
		}

		var res *importer.Result
		var runErr error
		switch {
		case importISBN != "":
			res, runErr = im.ImportOne(ctx, importISBN)
		case importFile != "":
			res, runErr = im.ImportFile(ctx, importFile)
		default:
			res, runErr = im.ImportSheet(ctx, importSheet)
		}

		if res != nil {
			if path, err := faillog.New(cfg.FailureLogDir).Flush(res.Failed); err != nil {
				slog.Error("failed to write failure log", "error", err)
			} else if path != "" {
				fmt.Printf("Wrote failure log: %s\n", path)
			}

			fmt.Println("Summary:")
			if err := cli.Output(res.Counts); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	importCmd.Flags().StringVar(&importISBN, "isbn", "", "single ISBN to import")
	importCmd.Flags().StringVar(&importFile, "file", "", "file with one ISBN per line")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "spreadsheet export (CSV) with ISBN/ISBN13 columns")
	importCmd.MarkFlagsMutuallyExclusive("isbn", "file", "sheet")
	importCmd.MarkFlagsOneRequired("isbn", "file", "sheet")
	rootCmd.AddCommand(importCmd)
}
