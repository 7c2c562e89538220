package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/booksync/internal/books"
	"github.com/jackzampolin/booksync/internal/iconsync"
	"github.com/jackzampolin/booksync/internal/notion"
	"github.com/jackzampolin/booksync/internal/reconcile"
)

type createdPage struct {
	Icon       *notion.Icon   `json:"icon"`
	Properties map[string]any `json:"properties"`
}

// notionServer records every page create it receives.
func notionServer(t *testing.T, created *[]createdPage) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var page createdPage
		if err := json.Unmarshal(body, &page); err != nil {
			t.Errorf("bad create body: %v", err)
		}
		*created = append(*created, page)
		fmt.Fprintf(w, `{"id": "page-%d"}`, len(*created))
	}))
}

// booksServer serves titles keyed by normalized ISBN.
func booksServer(titles map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isbn := strings.TrimPrefix(r.URL.Query().Get("q"), "isbn:")
		title, ok := titles[isbn]
		if !ok {
			w.Write([]byte(`{"totalItems": 0}`))
			return
		}
		fmt.Fprintf(w, `{"totalItems": 1, "items": [{"volumeInfo": {"title": %q, "pageCount": 200}}]}`, title)
	}))
}

func newImporter(notionURL, booksURL string) *Importer {
	return &Importer{
		Books: books.NewClient(books.Config{
			BaseURL:    booksURL,
			Attempts:   1,
			RetryDelay: time.Millisecond,
		}),
		Notion: notion.NewClient(notion.Config{
			Token:      "tok",
			DatabaseID: "db",
			BaseURL:    notionURL,
			Timeout:    5 * time.Second,
		}),
		TitleProp: "Title",
		ISBNProp:  "ISBN",
		PagesProp: "Pages",
		Throttle:  reconcile.Unlimited(),
		Out:       io.Discard,
	}
}

func TestImporter_ImportOne(t *testing.T) {
	var created []createdPage
	ns := notionServer(t, &created)
	defer ns.Close()
	bs := booksServer(map[string]string{"9780547928227": "The Hobbit"})
	defer bs.Close()

	im := newImporter(ns.URL, bs.URL)
	res, err := im.ImportOne(context.Background(), "978-0-547-92822-7")
	if err != nil {
		t.Fatalf("ImportOne() error = %v", err)
	}

	if res.Counts.Get("created") != 1 || len(res.Failed) != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(created) != 1 {
		t.Fatalf("created = %d pages, want 1", len(created))
	}
	// New records always get the to-read icon; they have no status yet.
	if created[0].Icon == nil || created[0].Icon.Emoji != iconsync.DefaultGlyph {
		t.Errorf("icon = %+v, want default glyph", created[0].Icon)
	}
	if _, ok := created[0].Properties["Pages"]; !ok {
		t.Error("page count from lookup missing on created record")
	}
}

func TestImporter_ImportOne_Failure(t *testing.T) {
	var created []createdPage
	ns := notionServer(t, &created)
	defer ns.Close()
	bs := booksServer(nil)
	defer bs.Close()

	im := newImporter(ns.URL, bs.URL)
	res, err := im.ImportOne(context.Background(), "978-0-547-92822-7")
	if err != nil {
		t.Fatalf("ImportOne() error = %v", err)
	}

	if res.Counts.Get("lookup_failed") != 1 {
		t.Errorf("counts = %v", res.Counts)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "9780547928227" {
		t.Errorf("failed = %v, want normalized identifier", res.Failed)
	}
	if len(created) != 0 {
		t.Errorf("created = %d pages, want 0", len(created))
	}
}

func TestImporter_ImportFile(t *testing.T) {
	var created []createdPage
	ns := notionServer(t, &created)
	defer ns.Close()
	bs := booksServer(map[string]string{
		"1111": "Book One",
		"3333": "Book Three",
	})
	defer bs.Close()

	path := filepath.Join(t.TempDir(), "isbns.txt")
	content := "1111\n\n  22-22  \n3333\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	im := newImporter(ns.URL, bs.URL)
	res, err := im.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}

	if res.Counts.Get("created") != 2 {
		t.Errorf("created = %d, want 2", res.Counts.Get("created"))
	}
	// Blank lines are ignored; "22-22" normalizes to 2222 and misses.
	if res.Counts.Get("lookup_failed") != 1 {
		t.Errorf("lookup_failed = %d, want 1", res.Counts.Get("lookup_failed"))
	}
	if len(res.Failed) != 1 || res.Failed[0] != "2222" {
		t.Errorf("failed = %v, want [2222]", res.Failed)
	}
}

func TestImporter_ImportFile_Missing(t *testing.T) {
	im := newImporter("http://unused", "http://unused")
	if _, err := im.ImportFile(context.Background(), "/does/not/exist"); err == nil {
		t.Error("expected error for missing file")
	}
}

func writeSheet(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImporter_ImportSheet_NoISBNColumn(t *testing.T) {
	im := newImporter("http://unused", "http://unused")
	path := writeSheet(t, "Title,Author,Rating", "Dune,Frank Herbert,5")

	_, err := im.ImportSheet(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for sheet without ISBN columns")
	}
	if !strings.Contains(err.Error(), "ISBN") {
		t.Errorf("error %q should name the missing columns", err)
	}
}

func TestImporter_ImportSheet_PrefersISBN13(t *testing.T) {
	var created []createdPage
	ns := notionServer(t, &created)
	defer ns.Close()
	bs := booksServer(map[string]string{
		"9780547928227": "The Hobbit",
		"1111":          "Fallback Book",
	})
	defer bs.Close()

	im := newImporter(ns.URL, bs.URL)
	path := writeSheet(t,
		"Title,ISBN,ISBN13",
		`The Hobbit,0547928220,978-0-547-92822-7`, // ISBN13 hits: ISBN never tried
		`Fallback Book,1111,9999`,                 // ISBN13 misses: fall back to ISBN
		`"No Identifiers, Here",,`,                // skipped, not a failure
		`Lost Book,2222,8888`,                     // both miss: last attempt logged
	)

	res, err := im.ImportSheet(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportSheet() error = %v", err)
	}

	if res.Counts.Get("created") != 2 {
		t.Errorf("created = %d, want 2", res.Counts.Get("created"))
	}
	if res.Counts.Get("no_isbn") != 1 {
		t.Errorf("no_isbn = %d, want 1", res.Counts.Get("no_isbn"))
	}
	if res.Counts.Get("lookup_failed") != 1 {
		t.Errorf("lookup_failed = %d, want 1", res.Counts.Get("lookup_failed"))
	}
	// The failure log carries the last-attempted identifier only; rows
	// with no identifiers never appear.
	if len(res.Failed) != 1 || res.Failed[0] != "2222" {
		t.Errorf("failed = %v, want [2222]", res.Failed)
	}
}

func TestImporter_ImportSheet_ISBNOnlyColumn(t *testing.T) {
	var created []createdPage
	ns := notionServer(t, &created)
	defer ns.Close()
	bs := booksServer(map[string]string{"1111": "Book One"})
	defer bs.Close()

	im := newImporter(ns.URL, bs.URL)
	path := writeSheet(t, "ISBN,Title", "1111,Book One")

	res, err := im.ImportSheet(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportSheet() error = %v", err)
	}
	if res.Counts.Get("created") != 1 {
		t.Errorf("counts = %v", res.Counts)
	}
}
