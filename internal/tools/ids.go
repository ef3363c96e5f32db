package tools

import "regexp"

// fileURLPattern matches the ID segment of a Docs or Sheets browser
// URL: .../document/d/<id>/... or .../spreadsheets/d/<id>/...
var fileURLPattern = regexp.MustCompile(`/(?:document|spreadsheets)/d/([a-zA-Z0-9_-]+)`)

// ExtractID accepts a bare file ID or a full browser URL and returns
// the ID. Anything that matches neither form passes through unchanged;
// the remote API decides whether it names a file.
func ExtractID(input string) string {
	if m := fileURLPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}
