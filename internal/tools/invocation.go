package tools

import (
	"context"

	"github.com/teemow/gdocs-mcp/internal/docs"
	"github.com/teemow/gdocs-mcp/internal/drive"
	"github.com/teemow/gdocs-mcp/internal/google"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/sheets"
)

// NotAuthenticatedMessage is the fixed tool output returned for any
// call made without credentials. It is ordinary tool output so the
// calling agent can show it to the user as-is.
const NotAuthenticatedMessage = "Not authenticated. Run 'gdocs-mcp auth' to authorize access to your Google account, then try again."

// Invocation is one parsed tool call carrying typed arguments. The
// variant set is closed: every tool is a struct in this file, and the
// catalog ties each name and schema to its variant. A variant without a
// run method, or a catalog entry without a variant, fails to compile.
type Invocation interface {
	run(ctx context.Context, session *google.Session) (string, error)
}

// Execute performs the capability call behind an invocation and renders
// the result as one text block.
func Execute(ctx context.Context, session *google.Session, inv Invocation) (string, error) {
	return inv.run(ctx, session)
}

// GetDocument reads one document as plain text.
type GetDocument struct {
	DocumentID string `json:"documentId"`
}

func (g GetDocument) run(ctx context.Context, session *google.Session) (string, error) {
	client, err := session.DocsClient(ctx)
	if err != nil {
		return "", err
	}
	var doc *docs.Document
	err = observe(ctx, session, instrumentation.ServiceDocs, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		doc, err = client.Get(ctx, ExtractID(g.DocumentID))
		return err
	})
	if err != nil {
		return "", err
	}
	return renderDocument(doc), nil
}

// ListDocuments lists documents, most recently modified first.
type ListDocuments struct {
	Limit int    `json:"limit"`
	Query string `json:"query"`
}

func (l ListDocuments) run(ctx context.Context, session *google.Session) (string, error) {
	client, err := session.DriveClient(ctx)
	if err != nil {
		return "", err
	}
	var files []*drive.FileInfo
	err = observe(ctx, session, instrumentation.ServiceDrive, instrumentation.OperationSearch, func(ctx context.Context) error {
		var err error
		files, err = client.Search(ctx, drive.SearchOptions{
			MimeType:  drive.DocumentMimeType,
			NameQuery: l.Query,
			Limit:     l.Limit,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return renderFileList(files), nil
}

// GetSpreadsheet reads spreadsheet metadata: title and per-sheet
// dimensions.
type GetSpreadsheet struct {
	SpreadsheetID string `json:"spreadsheetId"`
}

func (g GetSpreadsheet) run(ctx context.Context, session *google.Session) (string, error) {
	client, err := session.SheetsClient(ctx)
	if err != nil {
		return "", err
	}
	var ss *sheets.Spreadsheet
	err = observe(ctx, session, instrumentation.ServiceSheets, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		ss, err = client.GetSpreadsheet(ctx, ExtractID(g.SpreadsheetID))
		return err
	})
	if err != nil {
		return "", err
	}
	return renderSpreadsheet(ss), nil
}

// GetSheetData reads the cell values of one A1-notation range.
type GetSheetData struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range"`
}

func (g GetSheetData) run(ctx context.Context, session *google.Session) (string, error) {
	client, err := session.SheetsClient(ctx)
	if err != nil {
		return "", err
	}
	var data *sheets.RangeData
	err = observe(ctx, session, instrumentation.ServiceSheets, instrumentation.OperationValues, func(ctx context.Context) error {
		var err error
		data, err = client.GetValues(ctx, ExtractID(g.SpreadsheetID), g.Range)
		return err
	})
	if err != nil {
		return "", err
	}
	return renderRangeData(data), nil
}

// ListSpreadsheets lists spreadsheets, most recently modified first.
type ListSpreadsheets struct {
	Limit int    `json:"limit"`
	Query string `json:"query"`
}

func (l ListSpreadsheets) run(ctx context.Context, session *google.Session) (string, error) {
	client, err := session.DriveClient(ctx)
	if err != nil {
		return "", err
	}
	var files []*drive.FileInfo
	err = observe(ctx, session, instrumentation.ServiceDrive, instrumentation.OperationSearch, func(ctx context.Context) error {
		var err error
		files, err = client.Search(ctx, drive.SearchOptions{
			MimeType:  drive.SpreadsheetMimeType,
			NameQuery: l.Query,
			Limit:     l.Limit,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return renderFileList(files), nil
}
