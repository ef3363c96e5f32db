package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// DocumentText flattens a document body to plain text: paragraph runs
// as-is (they carry their own trailing newlines), bullet items prefixed
// with "- ", table cells tab-joined with rows newline-joined, and
// interior section breaks marked with a rule. Supports both legacy
// documents (doc.Body) and tabbed documents (doc.Tabs).
func DocumentText(doc *docs.Document) string {
	if doc == nil {
		return ""
	}

	var text strings.Builder

	if len(doc.Tabs) > 0 {
		for tabIndex, tab := range doc.Tabs {
			writeTab(&text, tab, tabIndex, 0)
		}
		return text.String()
	}

	if doc.Body != nil {
		writeContent(&text, doc.Body.Content)
	}
	return text.String()
}

// writeTab renders one tab, its body, and its child tabs. Top-level
// tabs get "===" markers, nested tabs "---" markers indented by depth.
func writeTab(text *strings.Builder, tab *docs.Tab, index, depth int) {
	title := ""
	if tab.TabProperties != nil {
		title = tab.TabProperties.Title
	}

	switch {
	case depth == 0 && title != "":
		fmt.Fprintf(text, "=== %s ===\n\n", title)
	case depth == 0 && index > 0:
		fmt.Fprintf(text, "=== Tab %d ===\n\n", index+1)
	case depth > 0 && title != "":
		fmt.Fprintf(text, "%s--- %s ---\n\n", strings.Repeat("  ", depth), title)
	case depth > 0:
		fmt.Fprintf(text, "%s--- Subtab %d ---\n\n", strings.Repeat("  ", depth), index+1)
	}

	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		writeContent(text, tab.DocumentTab.Body.Content)
	}

	for childIndex, child := range tab.ChildTabs {
		writeTab(text, child, childIndex, depth+1)
	}

	text.WriteString("\n")
}

func writeContent(text *strings.Builder, content []*docs.StructuralElement) {
	for i, element := range content {
		switch {
		case element.Paragraph != nil:
			writeParagraph(text, element.Paragraph)
		case element.Table != nil:
			writeTable(text, element.Table)
		case element.SectionBreak != nil:
			// Every document opens with an implicit section break; only
			// interior ones mark a boundary.
			if i > 0 {
				text.WriteString("---\n")
			}
		}
	}
}

func writeParagraph(text *strings.Builder, para *docs.Paragraph) {
	if para == nil || len(para.Elements) == 0 {
		return
	}

	if para.Bullet != nil {
		text.WriteString("- ")
	}
	for _, elem := range para.Elements {
		if elem.TextRun != nil && elem.TextRun.Content != "" {
			text.WriteString(elem.TextRun.Content)
		}
	}
}

// writeTable renders one table: cell text tab-joined within a row, rows
// newline-joined. Newlines inside a cell collapse to spaces so the row
// framing survives.
func writeTable(text *strings.Builder, table *docs.Table) {
	if table == nil {
		return
	}

	for _, row := range table.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var cellText strings.Builder
			for _, element := range cell.Content {
				if element.Paragraph != nil {
					writeParagraph(&cellText, element.Paragraph)
				}
			}
			cells = append(cells, strings.ReplaceAll(strings.TrimSpace(cellText.String()), "\n", " "))
		}
		text.WriteString(strings.Join(cells, "\t"))
		text.WriteString("\n")
	}
	text.WriteString("\n")
}
