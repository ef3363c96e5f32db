// Package sheets retrieves Google Sheets metadata and cell values.
//
// Two read-only operations: spreadsheet metadata (title plus per-sheet
// grid dimensions) and range values in A1 notation, cells formatted as
// displayed. Both run on an authenticated HTTP client supplied by the
// caller.
package sheets
