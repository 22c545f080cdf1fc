// Package export encodes filtered transactions as downloadable artifacts.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"fintrack/internal/core"
	"fintrack/internal/window"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNothingToExport is returned for an empty transaction set; no artifact
// is produced.
var ErrNothingToExport = errors.New("no data to export")

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatPDF    Format = "pdf"
	FormatSheets Format = "sheets"
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatPDF, FormatSheets:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type of a downloadable format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Header is the fixed field order shared by every encoder.
var Header = []string{"Date", "Category", "Description", "Amount", "Type", "ID"}

type record struct {
	Date        string          `json:"Date"`
	Category    string          `json:"Category"`
	Description string          `json:"Description"`
	Amount      jsoniter.Number `json:"Amount"`
	Type        string          `json:"Type"`
	ID          string          `json:"ID"`
}

func toRecord(t core.Transaction) record {
	typ := string(t.Type)
	if typ == "" {
		typ = string(core.Expense)
	}
	return record{
		Date:        t.Date.String(),
		Category:    t.Category,
		Description: t.Description,
		Amount:      jsoniter.Number(amountString(t.Amount)),
		Type:        typ,
		ID:          t.ID,
	}
}

// amountString prints the shortest decimal form: 12.5, 100, 0.05.
func amountString(m core.Money) string {
	return m.Decimal().String()
}

func (r record) values() []string {
	return []string{r.Date, r.Category, r.Description, string(r.Amount), r.Type, r.ID}
}

// Rows returns one row per transaction in Header order.
func Rows(txs []core.Transaction) [][]string {
	rows := make([][]string, len(txs))
	for i, t := range txs {
		rows[i] = toRecord(t).values()
	}
	return rows
}

// CSV writes an unquoted header line followed by one line per transaction
// with every value quoted. Lines are separated by a bare newline and there
// is no trailing newline.
func CSV(txs []core.Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, ErrNothingToExport
	}
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	for _, row := range Rows(txs) {
		buf.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(v, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes(), nil
}

// JSON writes an array of objects keyed by Header, indented by two spaces.
func JSON(txs []core.Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, ErrNothingToExport
	}
	recs := make([]record, len(txs))
	for i, t := range txs {
		recs[i] = toRecord(t)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Filename names the artifact for format f over window w. PDF reports carry
// the product name.
func Filename(f Format, w window.Window, product string) string {
	if f == FormatPDF {
		p := strings.ToLower(strings.Join(strings.Fields(product), "_"))
		if p == "" {
			p = "fintrack"
		}
		return p + "_report_" + w.Label() + ".pdf"
	}
	return "expenses_" + w.Label() + "." + string(f)
}
