package google

// DefaultScopes are the Google OAuth scopes this server requests.
// Everything is read-only: the server exposes no write operations, so the
// grant is kept as narrow as the tool catalog.
//
// The scopes provide access to:
//   - Google Docs: read-only document content
//   - Google Sheets: read-only spreadsheet metadata and cell data
//   - Google Drive: read-only file listing and search
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/documents.readonly",
	"https://www.googleapis.com/auth/spreadsheets.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
}
