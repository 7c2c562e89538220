// Package importer drives bulk book imports: look up each identifier against
// the bibliographic service and create one database record per hit.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackzampolin/booksync/internal/books"
	"github.com/jackzampolin/booksync/internal/iconsync"
	"github.com/jackzampolin/booksync/internal/notion"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

// Result carries the run's counters plus the identifiers that need manual
// retry via the failure log.
type Result struct {
	Counts reconcile.Counts
	Failed []string
}

// Importer funnels identifiers from any input source into the same
// lookup-then-create path. New records always get the to-read icon since
// they have no status yet.
type Importer struct {
	Books     *books.Client
	Notion    *notion.Client
	TitleProp string
	ISBNProp  string
	PagesProp string
	Throttle  reconcile.Throttle
	Logger    *slog.Logger
	Out       io.Writer // progress stream; defaults to stdout
}

// ImportOne imports a single identifier.
func (im *Importer) ImportOne(ctx context.Context, isbn string) (*Result, error) {
	res := newResult()
	im.importISBN(ctx, res, isbn)
	return res, nil
}

// ImportFile reads a file of identifiers, one per non-blank line, and imports
// them sequentially with pacing between records.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identifier file: %w", err)
	}

	res := newResult()
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		im.importISBN(ctx, res, line)
		if err := im.throttle().Wait(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

// importISBN looks up one identifier and creates a record on success.
// Failures append the normalized identifier to the result for the failure
// log and never abort the run.
func (im *Importer) importISBN(ctx context.Context, res *Result, raw string) {
	id := books.NormalizeISBN(raw)

	book, err := im.Books.Lookup(ctx, id)
	if err != nil {
		im.logger().Warn("lookup failed", "isbn", id, "error", err)
		res.Failed = append(res.Failed, id)
		res.Counts.Add("lookup_failed")
		return
	}

	if err := im.create(ctx, book); err != nil {
		im.logger().Error("create failed", "isbn", id, "error", err)
		res.Failed = append(res.Failed, id)
		res.Counts.Add("create_failed")
		return
	}

	fmt.Fprintf(im.out(), "Added %q (%s)\n", book.Title, id)
	res.Counts.Add("created")
}

// create writes a new record with the fixed default icon.
func (im *Importer) create(ctx context.Context, book *books.Book) error {
	props := map[string]any{
		im.TitleProp: notion.TitleValue(book.Title),
		im.ISBNProp:  notion.TextValue(book.ISBN),
	}
	if book.PageCount > 0 {
		props[im.PagesProp] = notion.NumberValue(float64(book.PageCount))
	}

	_, err := im.Notion.CreatePage(ctx, props, notion.EmojiIcon(iconsync.DefaultGlyph))
	return err
}

func newResult() *Result {
	return &Result{Counts: reconcile.Counts{}}
}

func (im *Importer) throttle() reconcile.Throttle {
	if im.Throttle != nil {
		return im.Throttle
	}
	return reconcile.Unlimited()
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}

func (im *Importer) out() io.Writer {
	if im.Out != nil {
		return im.Out
	}
	return os.Stdout
}
