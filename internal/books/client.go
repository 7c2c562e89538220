// Package books looks up bibliographic metadata by ISBN against the Google
// Books volumes API and normalizes the response into a Book record.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned when the identifier yields no usable record:
// no match, malformed response, or a match without a title.
var ErrNotFound = errors.New("book not found")

const (
	defaultBaseURL    = "https://www.googleapis.com"
	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 2 * time.Second
)

// Book is the canonical record produced by a successful lookup.
type Book struct {
	Title   string
	Authors []string
	ISBN    string
	// PageCount is zero when the source does not report one.
	PageCount int
}

// Config configures a Client.
type Config struct {
	BaseURL    string        // override for tests
	Timeout    time.Duration // HTTP timeout
	Attempts   uint          // total attempts per lookup, including the first
	RetryDelay time.Duration // fixed delay between attempts
}

// Client issues one request per identifier to the volumes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	retryDelay time.Duration
}

// NewClient creates a lookup client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
}

// NormalizeISBN trims whitespace and strips hyphens. The identifier is not
// otherwise validated; no checksum verification is performed.
func NormalizeISBN(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "")
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title     string   `json:"title"`
			Authors   []string `json:"authors"`
			PageCount int      `json:"pageCount"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup fetches metadata for the given identifier. It retries transient
// transport failures (network errors, 429, 5xx) with a fixed delay; a clean
// miss returns ErrNotFound without retrying.
func (c *Client) Lookup(ctx context.Context, isbn string) (*Book, error) {
	id := NormalizeISBN(isbn)
	endpoint := fmt.Sprintf("%s/books/v1/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+id))

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			switch {
			case resp.StatusCode == http.StatusOK:
				body = b
				return nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("lookup status %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("lookup status %d", resp.StatusCode))
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}

	var vols volumesResponse
	if err := json.Unmarshal(body, &vols); err != nil {
		return nil, fmt.Errorf("lookup %s: malformed response: %w", id, err)
	}
	if vols.TotalItems == 0 || len(vols.Items) == 0 {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}

	info := vols.Items[0].VolumeInfo
	if info.Title == "" {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}

	book := &Book{
		Title:     info.Title,
		Authors:   info.Authors,
		ISBN:      id,
		PageCount: info.PageCount,
	}
	if book.Authors == nil {
		book.Authors = []string{}
	}
	return book, nil
}
