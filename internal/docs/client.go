package docs

import (
	"context"
	"fmt"
	"net/http"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Client wraps the Google Docs API service.
type Client struct {
	service *docs.Service
}

// NewClient creates a Docs client on top of an already-authenticated
// HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	service, err := docs.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{service: service}, nil
}

// Get retrieves a document by ID and flattens its content to plain text.
// includeTabsContent fetches all tabs to support documents with multiple
// tabs (introduced Oct 2024); legacy documents keep using doc.Body.
func (c *Client) Get(ctx context.Context, documentID string) (*Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	doc, err := c.service.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	return &Document{
		ID:    doc.DocumentId,
		Title: doc.Title,
		Text:  DocumentText(doc),
	}, nil
}
