package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tnqbao/gau-box-service/config"
)

// NotionClient is a typed HTTP client for the record store's REST API. Only
// the surface this service needs is covered: pages, database query/create,
// and page comments.
type NotionClient struct {
	APIKey  string
	BaseURL string
	Version string
	HTTP    *http.Client
}

func InitNotionClient(cfg *config.EnvConfig) *NotionClient {
	return &NotionClient{
		APIKey:  cfg.Notion.APIKey,
		BaseURL: cfg.Notion.BaseURL,
		Version: cfg.Notion.Version,
		HTTP:    &http.Client{},
	}
}

// RichText is one fragment of a title or rich_text property. Text carries the
// outbound content; PlainText carries the inbound rendered value.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type FileLink struct {
	URL string `json:"url"`
}

// FileRef is one entry of a files property: either an uploaded-file reference
// or an external-link reference, tagged by Type.
type FileRef struct {
	Type     string    `json:"type,omitempty"`
	Name     string    `json:"name,omitempty"`
	File     *FileLink `json:"file,omitempty"`
	External *FileLink `json:"external,omitempty"`
}

// Property is the tagged union the record store returns for page properties.
// Exactly one of the value fields is populated, keyed by Type.
type Property struct {
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Files    []FileRef     `json:"files,omitempty"`
}

type Page struct {
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	InTrash    bool                `json:"in_trash"`
	Properties map[string]Property `json:"properties"`
}

type Database struct {
	ID string `json:"id"`
}

type Comment struct {
	ID       string     `json:"id"`
	RichText []RichText `json:"rich_text"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

type commentListResponse struct {
	Results []Comment `json:"results"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (n *NotionClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if n.APIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is not set")
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Notion-Version", n.Version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("record store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("record store returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("record store returned %d: %s", resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// RetrievePage fetches one page by id.
func (n *NotionClient) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := n.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to retrieve page: %w", err)
	}
	return &page, nil
}

type createPageRequest struct {
	Parent     map[string]string   `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

// CreatePage creates a page in the given database and returns it. The id is
// immediately usable for retrieval.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties map[string]Property) (*Page, error) {
	payload := createPageRequest{
		Parent:     map[string]string{"database_id": databaseID},
		Properties: properties,
	}
	var page Page
	if err := n.do(ctx, http.MethodPost, "/pages", payload, &page); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &page, nil
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}

// UpdatePage patches the given properties. Properties not present in the
// patch are left untouched by the record store.
func (n *NotionClient) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) (*Page, error) {
	var page Page
	if err := n.do(ctx, http.MethodPatch, "/pages/"+pageID, updatePageRequest{Properties: properties}, &page); err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	return &page, nil
}

// ArchivePage flags the page archived. The record is not physically removed.
func (n *NotionClient) ArchivePage(ctx context.Context, pageID string) error {
	archived := true
	if err := n.do(ctx, http.MethodPatch, "/pages/"+pageID, updatePageRequest{Archived: &archived}, nil); err != nil {
		return fmt.Errorf("failed to archive page: %w", err)
	}
	return nil
}

// QueryFilter is an equality filter on a rich_text property.
type QueryFilter struct {
	Property string `json:"property"`
	RichText struct {
		Equals string `json:"equals"`
	} `json:"rich_text"`
}

type QuerySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryRequest struct {
	Filter *QueryFilter `json:"filter,omitempty"`
	Sorts  []QuerySort  `json:"sorts,omitempty"`
}

// QueryDatabase runs an optional equality filter and sort against a database.
// Zero matches is a valid outcome, not an error.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, filter *QueryFilter, sorts []QuerySort) ([]Page, error) {
	var out queryResponse
	if err := n.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", queryRequest{Filter: filter, Sorts: sorts}, &out); err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	return out.Results, nil
}

type createDatabaseRequest struct {
	Parent     map[string]string          `json:"parent"`
	Title      []RichText                 `json:"title"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// CreateDatabase creates the Boxes database on the parent page with the fixed
// property schema the adapter expects.
func (n *NotionClient) CreateDatabase(ctx context.Context, parentPageID, title string, properties map[string]json.RawMessage) (string, error) {
	payload := createDatabaseRequest{
		Parent:     map[string]string{"type": "page_id", "page_id": parentPageID},
		Title:      []RichText{{Type: "text", Text: &TextContent{Content: title}}},
		Properties: properties,
	}
	var db Database
	if err := n.do(ctx, http.MethodPost, "/databases", payload, &db); err != nil {
		return "", fmt.Errorf("failed to create database: %w", err)
	}
	return db.ID, nil
}

// RetrieveDatabase verifies a database exists and is reachable.
func (n *NotionClient) RetrieveDatabase(ctx context.Context, databaseID string) error {
	var db Database
	if err := n.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return fmt.Errorf("failed to retrieve database: %w", err)
	}
	return nil
}

// ListComments lists the comments attached to a block or page.
func (n *NotionClient) ListComments(ctx context.Context, blockID string) ([]Comment, error) {
	var out commentListResponse
	if err := n.do(ctx, http.MethodGet, "/comments?block_id="+blockID, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return out.Results, nil
}

type createCommentRequest struct {
	Parent   map[string]string `json:"parent"`
	RichText []RichText        `json:"rich_text"`
}

// CreateComment attaches a plain-text comment to a page.
func (n *NotionClient) CreateComment(ctx context.Context, pageID, content string) error {
	payload := createCommentRequest{
		Parent:   map[string]string{"type": "page_id", "page_id": pageID},
		RichText: []RichText{{Type: "text", Text: &TextContent{Content: content}}},
	}
	if err := n.do(ctx, http.MethodPost, "/comments", payload, nil); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}
