package sheets

import (
	"context"
	"fmt"
	"net/http"

	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// Client wraps the Google Sheets API service.
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client on top of an already-authenticated
// HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: service}, nil
}

// GetSpreadsheet retrieves spreadsheet metadata: the title plus every
// sheet's name and grid dimensions. Cell data is not fetched.
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	ss, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId,properties.title,sheets(properties(title,gridProperties(rowCount,columnCount)))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	return convertSpreadsheet(ss), nil
}

// GetValues retrieves the cell values of one A1-notation range, each
// cell formatted the way the spreadsheet displays it.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, readRange string) (*RangeData, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if readRange == "" {
		return nil, fmt.Errorf("range is required")
	}

	values, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get range %s of spreadsheet %s: %w", readRange, spreadsheetID, err)
	}

	return &RangeData{
		Range: values.Range,
		Rows:  stringifyRows(values.Values),
	}, nil
}

// convertSpreadsheet converts a Sheets API Spreadsheet to our metadata type
func convertSpreadsheet(ss *sheets.Spreadsheet) *Spreadsheet {
	result := &Spreadsheet{ID: ss.SpreadsheetId}
	if ss.Properties != nil {
		result.Title = ss.Properties.Title
	}

	for _, sheet := range ss.Sheets {
		if sheet.Properties == nil {
			continue
		}
		s := Sheet{Title: sheet.Properties.Title}
		if grid := sheet.Properties.GridProperties; grid != nil {
			s.RowCount = grid.RowCount
			s.ColumnCount = grid.ColumnCount
		}
		result.Sheets = append(result.Sheets, s)
	}

	return result
}

// stringifyRows renders the API's untyped cell values as text. With
// FORMATTED_VALUE these are already strings; other kinds print their
// natural form.
func stringifyRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows
}
