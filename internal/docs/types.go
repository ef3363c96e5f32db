package docs

// Document is a fetched document flattened for rendering: identifier,
// title, and body text. The title is not repeated inside Text.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
