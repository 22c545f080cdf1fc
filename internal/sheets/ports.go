// Package sheets defines the spreadsheet export destination.
package sheets

import "context"

// RowExporter replaces the contents of a worksheet tab with a header row
// followed by data rows. It returns a reference to the written range.
type RowExporter interface {
	ExportRows(ctx context.Context, tab string, header []string, rows [][]string) (ref string, err error)
}
