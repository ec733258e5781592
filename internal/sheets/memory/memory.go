// Package memory is an in-process TransactionExporter used by tests and by
// the worker when no spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"flux/internal/core"
	ports "flux/internal/sheets"
)

var _ ports.TransactionExporter = (*Exporter)(nil)

type Exporter struct {
	mu    sync.Mutex
	rows  []ports.Row
	index map[string]int
	err   error
}

func New() *Exporter {
	return &Exporter{index: make(map[string]int)}
}

// FailWith makes every following call return err. A nil err restores normal
// behaviour.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Export stores the row of t, replacing an earlier one with the same id, and
// returns a synthetic row reference.
func (e *Exporter) Export(_ context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", errors.New("transaction without id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}

	row := ports.RowFromTransaction(t)
	if i, ok := e.index[t.ID]; ok {
		e.rows[i] = row
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	e.rows = append(e.rows, row)
	e.index[t.ID] = len(e.rows) - 1
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Remove blanks the row of id. Unknown ids are ignored.
func (e *Exporter) Remove(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	if i, ok := e.index[id]; ok {
		e.rows[i] = ports.Row{}
		delete(e.index, id)
	}
	return nil
}

// Rows returns the non-blank rows in insertion order.
func (e *Exporter) Rows() []ports.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ports.Row, 0, len(e.index))
	for _, r := range e.rows {
		if r.ID != "" {
			out = append(out, r)
		}
	}
	return out
}

// Row returns the mirrored row of id.
func (e *Exporter) Row(id string) (ports.Row, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[id]
	if !ok {
		return ports.Row{}, false
	}
	return e.rows[i], true
}
