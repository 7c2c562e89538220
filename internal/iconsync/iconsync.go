// Package iconsync normalizes page icons from the reading-status field using
// a fixed status-to-glyph table.
package iconsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackzampolin/booksync/internal/notion"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

// DefaultGlyph is the icon for newly imported books and the fallback for
// unrecognized statuses.
const DefaultGlyph = "📚"

// statusGlyphs maps each reading status to its expected icon.
var statusGlyphs = map[string]string{
	"To Read":   "📚",
	"Reading":   "📖",
	"Finished":  "✅",
	"Abandoned": "🗑️",
}

// GlyphFor returns the expected glyph for a status, falling back to
// DefaultGlyph for anything unrecognized (including a missing status).
func GlyphFor(status string) string {
	if glyph, ok := statusGlyphs[status]; ok {
		return glyph
	}
	return DefaultGlyph
}

// Syncer walks every record in the database and patches icons that do not
// match the status table.
type Syncer struct {
	Notion     *notion.Client
	StatusProp string
	TitleProp  string
	Throttle   reconcile.Throttle
	Logger     *slog.Logger
	Out        io.Writer // progress stream; defaults to stdout
}

// Run reconciles all pages and returns the per-outcome counters.
func (s *Syncer) Run(ctx context.Context) (reconcile.Counts, error) {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	loop := reconcile.Loop[notion.Page]{
		Fetch: func(ctx context.Context, cursor string) ([]notion.Page, reconcile.Cursor, error) {
			res, err := s.Notion.QueryPage(ctx, cursor)
			if err != nil {
				return nil, reconcile.Cursor{}, err
			}
			return res.Results, reconcile.Cursor{HasMore: res.HasMore, Next: res.NextCursor}, nil
		},
		Decide: func(ctx context.Context, page notion.Page) reconcile.Action {
			return s.decide(page, out)
		},
		Throttle: s.Throttle,
		Logger:   s.Logger,
	}
	return loop.Run(ctx)
}

// decide skips when the current emoji already equals the expected glyph
// (value equality) and otherwise patches only the icon field.
func (s *Syncer) decide(page notion.Page, out io.Writer) reconcile.Action {
	status, _ := page.StatusName(s.StatusProp)
	want := GlyphFor(status)

	if current, ok := page.Emoji(); ok && current == want {
		return reconcile.Skip("skipped")
	}

	return reconcile.Do(func(ctx context.Context) (string, error) {
		if err := s.Notion.UpdatePage(ctx, page.ID, notion.Patch{Icon: notion.EmojiIcon(want)}); err != nil {
			return "", err
		}
		fmt.Fprintf(out, "Updated icon for %q -> %s\n", page.PlainTitle(s.TitleProp), want)
		return "updated", nil
	})
}
