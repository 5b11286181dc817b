package sheetstore

import (
	"context"
	"fmt"
	"sync"

	"certificados/common"
)

// Memory is an in-memory RowStore with the same row index and shift
// semantics as the Sheets client. It backs the service when no spreadsheet
// is configured and every service test.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

// Seed replaces the contents of a sheet, header row included.
func (m *Memory) Seed(sheet string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	m.sheets[sheet] = copied
}

func (m *Memory) ReadRange(_ context.Context, sheet, _ string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrSheetNotFound, sheet)
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *Memory) AppendRow(_ context.Context, sheet, _ string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sheets[sheet]; !ok {
		return fmt.Errorf("%w: %q", common.ErrSheetNotFound, sheet)
	}
	m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), row...))
	return nil
}

func (m *Memory) UpdateRow(_ context.Context, sheet string, rowIndex int64, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return fmt.Errorf("%w: %q", common.ErrSheetNotFound, sheet)
	}
	if rowIndex < 1 || rowIndex > int64(len(rows)) {
		return fmt.Errorf("%w: %d (sheet %q has %d rows)", common.ErrRowIndexInvalid, rowIndex, sheet, len(rows))
	}
	rows[rowIndex-1] = append([]string(nil), row...)
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, sheet string, rowIndex int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return fmt.Errorf("%w: %q", common.ErrSheetNotFound, sheet)
	}
	if rowIndex < 1 || rowIndex > int64(len(rows)) {
		return fmt.Errorf("%w: %d (sheet %q has %d rows)", common.ErrRowIndexInvalid, rowIndex, sheet, len(rows))
	}
	i := rowIndex - 1
	m.sheets[sheet] = append(rows[:i], rows[i+1:]...)
	return nil
}
