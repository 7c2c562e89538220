package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(url string) *Client {
	return NewClient(Config{
		Token:      "secret-token",
		DatabaseID: "db-123",
		BaseURL:    url,
	})
}

func TestClient_QueryPage(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db-123/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret-token" {
			t.Errorf("unexpected authorization: %s", auth)
		}
		if v := r.Header.Get("Notion-Version"); v == "" {
			t.Error("missing Notion-Version header")
		}

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"id": "page-1", "icon": {"type": "emoji", "emoji": "📚"}, "properties": {}},
				{"id": "page-2", "icon": null, "properties": {}}
			],
			"has_more": true,
			"next_cursor": "cursor-abc"
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	res, err := client.QueryPage(context.Background(), "")
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}

	if len(res.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(res.Results))
	}
	if res.Results[0].ID != "page-1" {
		t.Errorf("first page ID = %s", res.Results[0].ID)
	}
	if emoji, ok := res.Results[0].Emoji(); !ok || emoji != "📚" {
		t.Errorf("first page emoji = %q, %v", emoji, ok)
	}
	if _, ok := res.Results[1].Emoji(); ok {
		t.Error("nil icon should report no emoji")
	}
	if !res.HasMore || res.NextCursor != "cursor-abc" {
		t.Errorf("cursor = %+v", res)
	}
	if _, present := gotBody["start_cursor"]; present {
		t.Error("first page request must omit start_cursor")
	}
}

func TestClient_QueryPage_WithCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(body, &req)
		if req["start_cursor"] != "cursor-abc" {
			t.Errorf("start_cursor = %v, want cursor-abc", req["start_cursor"])
		}
		w.Write([]byte(`{"results": [], "has_more": false, "next_cursor": ""}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	res, err := client.QueryPage(context.Background(), "cursor-abc")
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if res.HasMore {
		t.Error("expected final page")
	}
}

func TestClient_QueryPage_NullNextCursor(t *testing.T) {
	// Notion sends next_cursor: null on the final page; it must decode to "".
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [], "has_more": false, "next_cursor": null}`))
	}))
	defer server.Close()

	res, err := testClient(server.URL).QueryPage(context.Background(), "")
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if res.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty", res.NextCursor)
	}
}

func TestClient_CreatePage(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id": "page-new"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	props := map[string]any{"Title": TitleValue("The Dispossessed")}
	id, err := client.CreatePage(context.Background(), props, EmojiIcon("📚"))
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if id != "page-new" {
		t.Errorf("page ID = %s", id)
	}

	var req struct {
		Parent struct {
			DatabaseID string `json:"database_id"`
		} `json:"parent"`
		Icon *Icon `json:"icon"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if req.Parent.DatabaseID != "db-123" {
		t.Errorf("parent database = %s", req.Parent.DatabaseID)
	}
	if req.Icon == nil || req.Icon.Emoji != "📚" {
		t.Errorf("icon = %+v", req.Icon)
	}
}

func TestClient_UpdatePage(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id": "page-1"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.UpdatePage(context.Background(), "page-1", Patch{Icon: EmojiIcon("✅")})
	if err != nil {
		t.Fatalf("UpdatePage() error = %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", gotMethod)
	}
	if gotPath != "/v1/pages/page-1" {
		t.Errorf("path = %s", gotPath)
	}

	var patch Patch
	if err := json.Unmarshal(gotBody, &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	if patch.Properties != nil {
		t.Error("icon-only patch must omit properties")
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad_request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"rate_limited", http.StatusTooManyRequests},
		{"server_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			client := testClient(server.URL)
			if _, err := client.QueryPage(context.Background(), ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [], "has_more": false}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.QueryPage(ctx, ""); err == nil {
		t.Error("expected error from cancelled context")
	}
}
