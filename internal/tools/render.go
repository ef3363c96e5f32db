package tools

import (
	"fmt"
	"strings"

	"github.com/teemow/gdocs-mcp/internal/docs"
	"github.com/teemow/gdocs-mcp/internal/drive"
	"github.com/teemow/gdocs-mcp/internal/sheets"
)

// Every tool renders exactly one human-readable text block: a short
// header identifying the object, then prose, bullet lines, or
// tab-separated rows. The calling agent displays these verbatim.

func renderDocument(doc *docs.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", doc.Title)
	fmt.Fprintf(&b, "ID: %s\n\n", doc.ID)
	b.WriteString(doc.Text)
	return b.String()
}

func renderFileList(files []*drive.FileInfo) string {
	if len(files) == 0 {
		return "No files found."
	}

	var b strings.Builder
	for _, f := range files {
		if f.ModifiedTime.IsZero() {
			fmt.Fprintf(&b, "[%s] %s\n", f.ID, f.Name)
			continue
		}
		fmt.Fprintf(&b, "[%s] %s (modified %s)\n", f.ID, f.Name, f.ModifiedTime.Format("2006-01-02"))
	}
	return b.String()
}

func renderSpreadsheet(ss *sheets.Spreadsheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ss.Title)
	fmt.Fprintf(&b, "ID: %s\n\n", ss.ID)
	fmt.Fprintf(&b, "Sheets (%d):\n", len(ss.Sheets))
	for _, sheet := range ss.Sheets {
		fmt.Fprintf(&b, "- %s (%d rows x %d columns)\n", sheet.Title, sheet.RowCount, sheet.ColumnCount)
	}
	return b.String()
}

func renderRangeData(data *sheets.RangeData) string {
	if len(data.Rows) == 0 {
		return fmt.Sprintf("No data in range %s.", data.Range)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Values in %s:\n\n", data.Range)
	for _, row := range data.Rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}
