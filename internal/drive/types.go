package drive

import "time"

const (
	// DocumentMimeType is the MIME type for Google Docs documents.
	DocumentMimeType = "application/vnd.google-apps.document"

	// SpreadsheetMimeType is the MIME type for Google Sheets spreadsheets.
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// FileInfo is the subset of file metadata the listing tools render.
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink is a link for opening the file in the browser
	WebViewLink string `json:"webViewLink,omitempty"`
}

// SearchOptions narrow a file search.
type SearchOptions struct {
	// MimeType restricts results to one exact file kind.
	MimeType string

	// NameQuery filters by name substring using Drive's "name contains"
	// operator. Quotes and backslashes are escaped before use.
	NameQuery string

	// Limit caps the number of results. Zero or negative means the
	// package default.
	Limit int
}
