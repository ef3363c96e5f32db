package tools

import (
	"encoding/json"
	"fmt"

	"github.com/teemow/gdocs-mcp/internal/drive"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/protocol"
)

// toolDef ties one advertised descriptor to its typed variant, plus the
// Google service and operation labels used for audit records.
type toolDef struct {
	tool      protocol.Tool
	service   string
	operation string
	parse     func(args map[string]interface{}) (Invocation, error)
}

// catalog is the fixed ordered tool list. It is the single source for
// both tools/list advertising and tools/call argument parsing.
var catalog = []toolDef{
	{
		tool: protocol.Tool{
			Name:        "get_document",
			Description: "Read a Google Docs document as plain text. Accepts a document ID or a full document URL.",
			InputSchema: objectSchema(map[string]interface{}{
				"documentId": stringProp("Document ID or full Google Docs URL"),
			}, "documentId"),
		},
		service:   instrumentation.ServiceDocs,
		operation: instrumentation.OperationGet,
		parse: func(args map[string]interface{}) (Invocation, error) {
			var inv GetDocument
			if err := decodeArgs(args, &inv); err != nil {
				return nil, err
			}
			return inv, nil
		},
	},
	{
		tool: protocol.Tool{
			Name:        "list_documents",
			Description: "List Google Docs documents, most recently modified first. Optionally filter by name.",
			InputSchema: objectSchema(map[string]interface{}{
				"limit": intProp("Maximum number of documents to return", drive.DefaultSearchLimit),
				"query": stringProp("Filter documents whose name contains this text"),
			}),
		},
		service:   instrumentation.ServiceDrive,
		operation: instrumentation.OperationSearch,
		parse: func(args map[string]interface{}) (Invocation, error) {
			var inv ListDocuments
			if err := decodeArgs(args, &inv); err != nil {
				return nil, err
			}
			if inv.Limit <= 0 {
				inv.Limit = drive.DefaultSearchLimit
			}
			return inv, nil
		},
	},
	{
		tool: protocol.Tool{
			Name:        "get_spreadsheet",
			Description: "Get Google Sheets spreadsheet metadata: title plus the name and grid size of every sheet. Accepts a spreadsheet ID or a full spreadsheet URL.",
			InputSchema: objectSchema(map[string]interface{}{
				"spreadsheetId": stringProp("Spreadsheet ID or full Google Sheets URL"),
			}, "spreadsheetId"),
		},
		service:   instrumentation.ServiceSheets,
		operation: instrumentation.OperationGet,
		parse: func(args map[string]interface{}) (Invocation, error) {
			var inv GetSpreadsheet
			if err := decodeArgs(args, &inv); err != nil {
				return nil, err
			}
			return inv, nil
		},
	},
	{
		tool: protocol.Tool{
			Name:        "get_sheet_data",
			Description: "Read cell values from a spreadsheet range in A1 notation, e.g. 'Sheet1!A1:C10'.",
			InputSchema: objectSchema(map[string]interface{}{
				"spreadsheetId": stringProp("Spreadsheet ID or full Google Sheets URL"),
				"range":         stringProp("Range to read, in A1 notation"),
			}, "spreadsheetId", "range"),
		},
		service:   instrumentation.ServiceSheets,
		operation: instrumentation.OperationValues,
		parse: func(args map[string]interface{}) (Invocation, error) {
			var inv GetSheetData
			if err := decodeArgs(args, &inv); err != nil {
				return nil, err
			}
			return inv, nil
		},
	},
	{
		tool: protocol.Tool{
			Name:        "list_spreadsheets",
			Description: "List Google Sheets spreadsheets, most recently modified first. Optionally filter by name.",
			InputSchema: objectSchema(map[string]interface{}{
				"limit": intProp("Maximum number of spreadsheets to return", drive.DefaultSearchLimit),
				"query": stringProp("Filter spreadsheets whose name contains this text"),
			}),
		},
		service:   instrumentation.ServiceDrive,
		operation: instrumentation.OperationSearch,
		parse: func(args map[string]interface{}) (Invocation, error) {
			var inv ListSpreadsheets
			if err := decodeArgs(args, &inv); err != nil {
				return nil, err
			}
			if inv.Limit <= 0 {
				inv.Limit = drive.DefaultSearchLimit
			}
			return inv, nil
		},
	},
}

// Catalog returns the advertised tool descriptors in their fixed order.
// The catalog is static: identical across calls and transports, and
// independent of authentication state.
func Catalog() []protocol.Tool {
	list := make([]protocol.Tool, len(catalog))
	for i, def := range catalog {
		list[i] = def.tool
	}
	return list
}

// ServiceOperation reports the Google service and operation labels
// behind an advertised tool. ok is false for names outside the catalog,
// which also bounds metric cardinality: only catalog names ever become
// label values.
func ServiceOperation(name string) (service, operation string, ok bool) {
	for _, def := range catalog {
		if def.tool.Name == name {
			return def.service, def.operation, true
		}
	}
	return "", "", false
}

// AuditFields pulls the resource identifiers out of raw call arguments
// for audit records. Document and spreadsheet references are reduced to
// bare IDs first so full URLs never reach the audit stream.
func AuditFields(args map[string]interface{}) (resource, a1Range, query string) {
	if v, ok := args["documentId"].(string); ok {
		resource = ExtractID(v)
	}
	if v, ok := args["spreadsheetId"].(string); ok {
		resource = ExtractID(v)
	}
	if v, ok := args["range"].(string); ok {
		a1Range = v
	}
	if v, ok := args["query"].(string); ok {
		query = v
	}
	return resource, a1Range, query
}

// ParseCall resolves a tool name and raw arguments into a typed
// invocation. Unknown names map to the method-not-found class, schema
// violations to the invalid-params class.
func ParseCall(name string, args map[string]interface{}) (Invocation, error) {
	for _, def := range catalog {
		if def.tool.Name != name {
			continue
		}
		if err := protocol.ValidateToolArguments(def.tool.InputSchema, args); err != nil {
			return nil, protocol.NewError(protocol.CodeInvalidParams, fmt.Sprintf("invalid arguments for %s: %v", name, err), nil)
		}
		inv, err := def.parse(args)
		if err != nil {
			return nil, protocol.NewError(protocol.CodeInvalidParams, fmt.Sprintf("invalid arguments for %s: %v", name, err), nil)
		}
		return inv, nil
	}
	return nil, protocol.NewError(protocol.CodeMethodNotFound, fmt.Sprintf("unknown tool: %s", name), nil)
}

// decodeArgs maps validated arguments onto a variant's typed fields.
func decodeArgs(args map[string]interface{}, into Invocation) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func intProp(description string, defaultValue int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"default":     defaultValue,
	}
}
