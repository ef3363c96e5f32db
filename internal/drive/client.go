package drive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DefaultSearchLimit is the result cap applied when the caller does not
// give one.
const DefaultSearchLimit = 10

// Client wraps the Google Drive API service.
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client on top of an already-authenticated
// HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service}, nil
}

// Search lists files matching the options, most recently modified
// first. Trashed files are always excluded.
func (c *Client) Search(ctx context.Context, options SearchOptions) ([]*FileInfo, error) {
	limit := options.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	fileList, err := c.service.Files.List().
		Context(ctx).
		Q(buildSearchQuery(options.MimeType, options.NameQuery)).
		OrderBy("modifiedTime desc").
		PageSize(int64(limit)).
		Fields("files(id, name, mimeType, modifiedTime, webViewLink)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}

	return files, nil
}

// buildSearchQuery assembles the Drive query string: optional exact
// mime type, optional name filter, and always trashed=false.
func buildSearchQuery(mimeType, nameQuery string) string {
	var parts []string
	if mimeType != "" {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", mimeType))
	}
	if nameQuery != "" {
		parts = append(parts, fmt.Sprintf("name contains '%s'", escapeQueryTerm(nameQuery)))
	}
	parts = append(parts, "trashed=false")
	return strings.Join(parts, " and ")
}

// escapeQueryTerm escapes backslashes and single quotes per the Drive
// query language so user input cannot break out of the quoted term.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	return info
}
