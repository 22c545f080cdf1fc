package memory

import (
	"context"
	"testing"
)

func TestExportRowsReplacesTab(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.ExportRows(ctx, "", []string{"A"}, [][]string{{"1"}, {"2"}}); err != nil {
		t.Fatalf("ExportRows: %v", err)
	}
	ref, err := s.ExportRows(ctx, "", []string{"A"}, [][]string{{"3"}})
	if err != nil {
		t.Fatalf("ExportRows: %v", err)
	}
	if ref != "mem:Transactions!2" {
		t.Fatalf("ref = %q", ref)
	}
	got := s.Tab("Transactions")
	if len(got) != 2 || got[1][0] != "3" {
		t.Fatalf("tab = %v", got)
	}
}
