package http

import (
	"net/http"
	"strings"

	"flux/internal/core"
	"flux/internal/ledger"
)

// handleListTransactions lists the selected month (scope=month, the
// default) or every transaction (scope=all), optionally of one type.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	q := r.URL.Query()

	var ts []core.Transaction
	switch scope := strings.TrimSpace(q.Get("scope")); scope {
	case "", "month":
		ts = st.MonthlyTransactions()
	case "all":
		ts = st.Transactions()
	default:
		writeError(w, r, &core.ValidationError{Field: "scope", Message: "scope must be month or all"})
		return
	}

	if typ := core.TransactionType(strings.TrimSpace(q.Get("type"))); typ != "" {
		if !typ.Valid() {
			writeError(w, r, &core.ValidationError{Field: "type", Message: "type must be income or expense"})
			return
		}
		filtered := ts[:0]
		for _, t := range ts {
			if t.Type == typ {
				filtered = append(filtered, t)
			}
		}
		ts = filtered
	}

	writeJSON(w, http.StatusOK, newTransactionsJSON(ts))
}

// handleCreateTransaction records a standalone transaction, or an
// installment plan when installments is above one.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req transactionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tx := req.toTransaction()
	if req.Installments > 1 {
		saved, err := st.AddInstallmentPlan(r.Context(), tx, req.Installments)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTransactionsJSON(saved))
		return
	}

	saved, err := st.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionJSON(saved))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req transactionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Installments > 1 {
		writeError(w, r, &core.ValidationError{Field: "installments", Message: "installments cannot be changed on update"})
		return
	}

	saved, err := st.UpdateTransaction(r.Context(), r.PathValue("id"), req.toTransaction())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionJSON(saved))
}

// handleDeleteTransaction removes a transaction, or its whole installment
// group. Unknown ids succeed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	if err := st.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
