package importer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackzampolin/booksync/internal/books"
)

// parseLine splits one delimited line into fields, honoring quoted segments.
// The quote flag toggles on every quote character, so escaped quotes inside a
// quoted field are not supported; nor are multi-line fields. Both are known
// limitations of the exported sheets this consumes, kept as-is. The trailing
// field is always emitted, even when the line ends without a delimiter.
func parseLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// sheetColumns locates the identifier and title columns in a header row.
// Matching is case-insensitive on the trimmed cell text.
type sheetColumns struct {
	isbn   int
	isbn13 int
	title  int
}

func findColumns(header []string) sheetColumns {
	cols := sheetColumns{isbn: -1, isbn13: -1, title: -1}
	for i, cell := range header {
		switch strings.ToUpper(strings.TrimSpace(cell)) {
		case "ISBN":
			cols.isbn = i
		case "ISBN13", "ISBN-13":
			cols.isbn13 = i
		case "TITLE":
			cols.title = i
		}
	}
	return cols
}

func cellAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

// ImportSheet imports from a spreadsheet export. The header row must contain
// an ISBN and/or ISBN13 column or the run aborts with a descriptive error.
// Per data row, ISBN13 is preferred as the lookup key, falling back to ISBN
// only when ISBN13 is absent or its lookup fails. Rows with neither value
// are logged and skipped without counting as failures; rows where every
// attempted lookup fails contribute the last-attempted identifier to the
// failure log.
func (im *Importer) ImportSheet(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("sheet %s is empty", path)
	}

	cols := findColumns(parseLine(lines[0]))
	if cols.isbn < 0 && cols.isbn13 < 0 {
		return nil, fmt.Errorf("sheet %s has no ISBN or ISBN13 column", path)
	}

	res := newResult()
	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := parseLine(line)

		isbn13 := cellAt(fields, cols.isbn13)
		isbn10 := cellAt(fields, cols.isbn)
		title := cellAt(fields, cols.title)

		if isbn13 == "" && isbn10 == "" {
			fmt.Fprintf(im.out(), "Skipping row %d (%q): no ISBN\n", n+2, title)
			res.Counts.Add("no_isbn")
			continue
		}

		if err := im.importRow(ctx, res, isbn13, isbn10); err != nil {
			return res, err
		}
	}
	return res, nil
}

// importRow tries ISBN13 first, then ISBN, pacing after each lookup.
func (im *Importer) importRow(ctx context.Context, res *Result, isbn13, isbn10 string) error {
	last := ""
	for _, raw := range []string{isbn13, isbn10} {
		if raw == "" {
			continue
		}
		normalized := books.NormalizeISBN(raw)
		last = normalized

		book, err := im.Books.Lookup(ctx, normalized)
		if waitErr := im.throttle().Wait(ctx); waitErr != nil {
			return waitErr
		}
		if err != nil {
			im.logger().Warn("lookup failed", "isbn", normalized, "error", err)
			continue
		}

		if err := im.create(ctx, book); err != nil {
			im.logger().Error("create failed", "isbn", normalized, "error", err)
			res.Failed = append(res.Failed, normalized)
			res.Counts.Add("create_failed")
			return nil
		}
		fmt.Fprintf(im.out(), "Added %q (%s)\n", book.Title, normalized)
		res.Counts.Add("created")
		return nil
	}

	res.Failed = append(res.Failed, last)
	res.Counts.Add("lookup_failed")
	return nil
}
