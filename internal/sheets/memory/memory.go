// Package memory is an in-process spreadsheet used when no Google
// spreadsheet is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	ports "fintrack/internal/sheets"
)

var _ ports.RowExporter = (*Sheet)(nil)

type Sheet struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

func New() *Sheet {
	return &Sheet{tabs: make(map[string][][]string)}
}

func (s *Sheet) ExportRows(_ context.Context, tab string, header []string, rows [][]string) (string, error) {
	if tab == "" {
		tab = "Transactions"
	}
	out := make([][]string, 0, len(rows)+1)
	out = append(out, slices.Clone(header))
	for _, r := range rows {
		out = append(out, slices.Clone(r))
	}
	s.mu.Lock()
	s.tabs[tab] = out
	s.mu.Unlock()
	return fmt.Sprintf("mem:%s!%d", tab, len(out)), nil
}

// Tab returns a copy of the rows last written to tab, header included.
func (s *Sheet) Tab(tab string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.tabs[tab]))
	for i, r := range s.tabs[tab] {
		out[i] = slices.Clone(r)
	}
	return out
}
