// Package sheets mirrors ledger transactions into a spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"flux/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter writes one row per transaction. Export is an
	// upsert keyed by transaction id and returns the row reference.
	TransactionExporter interface {
		Export(ctx context.Context, t core.Transaction) (rowRef string, err error)
		// Remove clears the row of the transaction; unknown ids are ignored.
		Remove(ctx context.Context, id string) error
	}
)

// Header is the first row of every mirror sheet.
var Header = []string{"ID", "Data", "Tipo", "Descrição", "Categoria", "Pagador", "Status", "Pagamento", "Valor"}

// Row is the mirrored form of a transaction.
type Row struct {
	ID            string
	Date          string
	Type          string
	Description   string
	Category      string
	Payer         string
	Status        string
	PaymentMethod string
	Amount        string
}

func RowFromTransaction(t core.Transaction) Row {
	return Row{
		ID:            t.ID,
		Date:          t.Date.String(),
		Type:          string(t.Type),
		Description:   t.Description,
		Category:      t.Category,
		Payer:         t.Payer,
		Status:        string(t.Status),
		PaymentMethod: string(t.PaymentMethod),
		Amount:        t.Amount.String(),
	}
}

// Values returns the cells in Header order.
func (r Row) Values() []any {
	return []any{r.ID, r.Date, r.Type, r.Description, r.Category, r.Payer, r.Status, r.PaymentMethod, r.Amount}
}

// ParseRow reads a row back from sheet cells. Header and blank rows are
// reported as not ok.
func ParseRow(cells []any) (Row, bool) {
	cols := make([]string, len(Header))
	for i := range cols {
		if i < len(cells) {
			cols[i] = strings.TrimSpace(fmt.Sprint(cells[i]))
		}
	}
	if cols[0] == "" || cols[0] == Header[0] {
		return Row{}, false
	}
	return Row{
		ID:            cols[0],
		Date:          cols[1],
		Type:          cols[2],
		Description:   cols[3],
		Category:      cols[4],
		Payer:         cols[5],
		Status:        cols[6],
		PaymentMethod: cols[7],
		Amount:        cols[8],
	}, true
}
