package export

import (
	"bytes"
	"encoding/csv"
	stdjson "encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	"fintrack/internal/window"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "t2", Amount: core.Money{Cents: 1250}, Type: core.Expense, Category: "Food", Description: `pizza "large", extra`, Date: core.NewDate(2025, 1, 3)},
		{ID: "t1", Amount: core.Money{Cents: 100000}, Type: core.Income, Description: "salary", Date: core.NewDate(2025, 1, 1)},
	}
}

func TestCSVLayout(t *testing.T) {
	out, err := CSV(sample())
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	want := "Date,Category,Description,Amount,Type,ID\n" +
		`"2025-01-03","Food","pizza ""large"", extra","12.5","expense","t2"` + "\n" +
		`"2025-01-01","","salary","1000","income","t1"`
	if string(out) != want {
		t.Fatalf("CSV mismatch:\n got %q\nwant %q", out, want)
	}
}

func TestCSVRoundTripsThroughStandardReader(t *testing.T) {
	out, err := CSV(sample())
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	recs, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("rows = %d", len(recs))
	}
	if recs[1][2] != `pizza "large", extra` || recs[2][5] != "t1" {
		t.Fatalf("unexpected values: %v", recs)
	}
}

func TestJSONLayout(t *testing.T) {
	out, err := JSON(sample())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.HasPrefix(string(out), "[\n  {\n    \"Date\": \"2025-01-03\",\n    \"Category\": \"Food\",") {
		t.Fatalf("unexpected layout:\n%s", out)
	}
	if strings.HasSuffix(string(out), "\n") {
		t.Fatalf("trailing newline")
	}
	var back []map[string]any
	if err := stdjson.Unmarshal(out, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back[0]["Amount"].(float64) != 12.5 || back[1]["Type"] != "income" || back[1]["ID"] != "t1" {
		t.Fatalf("unexpected records: %v", back)
	}
	if len(back[0]) != len(Header) {
		t.Fatalf("keys = %d, want %d", len(back[0]), len(Header))
	}
}

func TestEmptySetProducesNothing(t *testing.T) {
	if _, err := CSV(nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("CSV(nil) err = %v", err)
	}
	if _, err := JSON([]core.Transaction{}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("JSON(empty) err = %v", err)
	}
	if _, err := PDF(Report{}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("PDF(empty) err = %v", err)
	}
}

func TestPDF(t *testing.T) {
	txs := sample()
	r := Report{
		Product:      "FinTrack",
		Window:       window.Days(30),
		Generated:    time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC),
		Summary:      dashboard.Aggregate(txs, window.Days(30)),
		Transactions: txs,
	}
	out, err := PDF(r)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", out[:16])
	}
}

func TestFilename(t *testing.T) {
	cases := []struct {
		f    Format
		w    window.Window
		want string
	}{
		{FormatCSV, window.Days(7), "expenses_7days.csv"},
		{FormatJSON, window.All(), "expenses_all.json"},
		{FormatPDF, window.Days(30), "fintrack_report_30days.pdf"},
		{FormatCSV, window.Custom(core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)), "expenses_custom_2025-01-01_2025-01-31.csv"},
	}
	for _, tc := range cases {
		if got := Filename(tc.f, tc.w, "FinTrack"); got != tc.want {
			t.Fatalf("Filename = %q, want %q", got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:          "0.00",
		5:          "0.05",
		123456:     "1,234.56",
		123456750:  "1,234,567.50",
		-100000000: "-1,000,000.00",
	}
	for cents, want := range cases {
		if got := FormatAmount(core.Money{Cents: cents}); got != want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
