// Package notion is a minimal client for the Notion API, covering only the
// three operations the sync workflows need: paginated database query, page
// create, and page update. The full capability of the service is deliberately
// out of scope.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"
	defaultTimeout = 30 * time.Second

	// queryPageSize is the number of records requested per query page.
	queryPageSize = 100
)

// Config configures a Client.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string        // override for tests; defaults to the public API
	Version    string        // Notion-Version header value
	Timeout    time.Duration // HTTP timeout; explicit rather than transport default
}

// Client is a Notion HTTP client scoped to a single database.
type Client struct {
	baseURL    string
	token      string
	version    string
	databaseID string
	httpClient *http.Client
}

// NewClient creates a new Notion client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		version:    cfg.Version,
		databaseID: cfg.DatabaseID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// QueryResult is one page of database records plus pagination state.
type QueryResult struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

// QueryPage fetches one page of the database. An empty cursor requests the
// first page; pass NextCursor from the previous result to continue.
func (c *Client) QueryPage(ctx context.Context, cursor string) (*QueryResult, error) {
	var result QueryResult
	path := fmt.Sprintf("/v1/databases/%s/query", c.databaseID)
	req := queryRequest{StartCursor: cursor, PageSize: queryPageSize}
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, fmt.Errorf("query database: %w", err)
	}
	return &result, nil
}

type createPageRequest struct {
	Parent     parentRef      `json:"parent"`
	Icon       *Icon          `json:"icon,omitempty"`
	Properties map[string]any `json:"properties"`
}

type parentRef struct {
	DatabaseID string `json:"database_id"`
}

type createPageResponse struct {
	ID string `json:"id"`
}

// CreatePage creates a new record in the database and returns its ID.
func (c *Client) CreatePage(ctx context.Context, properties map[string]any, icon *Icon) (string, error) {
	req := createPageRequest{
		Parent:     parentRef{DatabaseID: c.databaseID},
		Icon:       icon,
		Properties: properties,
	}
	var resp createPageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &resp); err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	return resp.ID, nil
}

// Patch is a partial page update. Nil fields are left untouched.
type Patch struct {
	Properties map[string]any `json:"properties,omitempty"`
	Icon       *Icon          `json:"icon,omitempty"`
}

// UpdatePage applies a partial update to an existing record.
func (c *Client) UpdatePage(ctx context.Context, pageID string, patch Patch) error {
	path := fmt.Sprintf("/v1/pages/%s", pageID)
	if err := c.do(ctx, http.MethodPatch, path, patch, nil); err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

// do sends a JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notion error (status %d): %s", resp.StatusCode, snippet(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w (body: %s)", err, snippet(respBody))
		}
	}
	return nil
}

// snippet truncates response bodies for error messages.
func snippet(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
