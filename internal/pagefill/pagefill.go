// Package pagefill backfills the page-count property from the bibliographic
// lookup service.
package pagefill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackzampolin/booksync/internal/books"
	"github.com/jackzampolin/booksync/internal/notion"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

// Result carries the run's counters plus the identifiers whose lookups
// failed, for the failure log.
type Result struct {
	Counts reconcile.Counts
	Failed []string
}

// Backfiller fills in missing page counts. With Force set it re-fetches and
// overwrites counts that are already present.
type Backfiller struct {
	Notion    *notion.Client
	Books     *books.Client
	Force     bool
	ISBNProp  string
	PagesProp string
	TitleProp string
	Throttle  reconcile.Throttle
	Logger    *slog.Logger
	Out       io.Writer // progress stream; defaults to stdout

	failed []string
}

// Run reconciles all pages. Without Force, a second run over unmodified
// state counts everything as skipped.
func (b *Backfiller) Run(ctx context.Context) (*Result, error) {
	out := b.Out
	if out == nil {
		out = os.Stdout
	}

	loop := reconcile.Loop[notion.Page]{
		Fetch: func(ctx context.Context, cursor string) ([]notion.Page, reconcile.Cursor, error) {
			res, err := b.Notion.QueryPage(ctx, cursor)
			if err != nil {
				return nil, reconcile.Cursor{}, err
			}
			return res.Results, reconcile.Cursor{HasMore: res.HasMore, Next: res.NextCursor}, nil
		},
		Decide: func(ctx context.Context, page notion.Page) reconcile.Action {
			return b.decide(page, out)
		},
		Throttle: b.Throttle,
		Logger:   b.Logger,
	}

	counts, err := loop.Run(ctx)
	return &Result{Counts: counts, Failed: b.failed}, err
}

func (b *Backfiller) decide(page notion.Page, out io.Writer) reconcile.Action {
	isbn, ok := page.PlainText(b.ISBNProp)
	isbn = strings.TrimSpace(isbn)
	if !ok || isbn == "" {
		return reconcile.Skip("missing_isbn")
	}

	_, hasCount := page.Number(b.PagesProp)
	if hasCount && !b.Force {
		return reconcile.Skip("skipped")
	}

	outcome := "updated"
	if hasCount {
		outcome = "force_updated"
	}

	return reconcile.Do(func(ctx context.Context) (string, error) {
		book, err := b.Books.Lookup(ctx, isbn)
		if err != nil {
			if !errors.Is(err, books.ErrNotFound) {
				// Transport failure: recoverable at the record level.
				b.logger().Warn("lookup failed", "isbn", isbn, "error", err)
			}
			b.failed = append(b.failed, books.NormalizeISBN(isbn))
			return "fetch_failed", nil
		}
		if book.PageCount <= 0 {
			b.failed = append(b.failed, books.NormalizeISBN(isbn))
			return "fetch_failed", nil
		}

		patch := notion.Patch{Properties: map[string]any{
			b.PagesProp: notion.NumberValue(float64(book.PageCount)),
		}}
		if err := b.Notion.UpdatePage(ctx, page.ID, patch); err != nil {
			return "", err
		}
		fmt.Fprintf(out, "Set %d pages for %q\n", book.PageCount, page.PlainTitle(b.TitleProp))
		return outcome, nil
	})
}

func (b *Backfiller) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
