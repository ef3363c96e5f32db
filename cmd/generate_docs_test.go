package cmd

import (
	"strings"
	"testing"

	"github.com/teemow/gdocs-mcp/internal/protocol"
	"github.com/teemow/gdocs-mcp/internal/tools"
)

func TestGenerateToolsMarkdownCoversCatalog(t *testing.T) {
	markdown := generateToolsMarkdown(tools.Catalog())

	for _, tool := range tools.Catalog() {
		if !strings.Contains(markdown, "### "+tool.Name) {
			t.Errorf("markdown missing section for tool %s", tool.Name)
		}
		if !strings.Contains(markdown, tool.Description) {
			t.Errorf("markdown missing description for tool %s", tool.Name)
		}
	}
}

func TestGenerateToolsMarkdownKeepsCatalogOrder(t *testing.T) {
	markdown := generateToolsMarkdown(tools.Catalog())

	last := -1
	for _, tool := range tools.Catalog() {
		idx := strings.Index(markdown, "### "+tool.Name)
		if idx < 0 {
			t.Fatalf("markdown missing section for tool %s", tool.Name)
		}
		if idx < last {
			t.Errorf("tool %s documented out of catalog order", tool.Name)
		}
		last = idx
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := protocol.Tool{
		Name:        "get_document",
		Description: "Read a document.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"documentId": map[string]interface{}{
					"type":        "string",
					"description": "Document ID or URL",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum results",
					"default":     10,
				},
			},
			"required": []string{"documentId"},
		},
	}

	markdown := generateToolMarkdown(tool)

	tests := []struct {
		name string
		want string
	}{
		{name: "section header", want: "### get_document"},
		{name: "description", want: "Read a document."},
		{name: "required argument", want: "`documentId` (required): Document ID or URL"},
		{name: "optional argument", want: "`limit` (optional): Maximum results"},
		{name: "default value", want: "(default: 10)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(markdown, tt.want) {
				t.Errorf("markdown does not contain %q:\n%s", tt.want, markdown)
			}
		})
	}
}
