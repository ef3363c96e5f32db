package sheets

// Spreadsheet is spreadsheet metadata: the document itself plus the
// grid dimensions of every sheet inside it. No cell data.
type Spreadsheet struct {
	// ID is the unique identifier for the spreadsheet
	ID string `json:"id"`

	// Title is the spreadsheet title
	Title string `json:"title"`

	// Sheets are the sheets inside the spreadsheet, in tab order
	Sheets []Sheet `json:"sheets"`
}

// Sheet describes one sheet tab.
type Sheet struct {
	// Title is the sheet name as shown on the tab
	Title string `json:"title"`

	// RowCount is the number of rows in the grid
	RowCount int64 `json:"rowCount"`

	// ColumnCount is the number of columns in the grid
	ColumnCount int64 `json:"columnCount"`
}

// RangeData holds the formatted cell values of one A1-notation range.
type RangeData struct {
	// Range is the range actually returned, normalized by the API
	Range string `json:"range"`

	// Rows are the cell values as the user sees them, row-major
	Rows [][]string `json:"rows"`
}
