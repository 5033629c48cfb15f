package models

// Row is one raw record keyed by column name.
type Row map[string]any

// Table is a raw tabular record set as it arrives from a spreadsheet import.
// Column names are unconstrained until the set is normalized.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}
