package http

import (
	"net/http"

	"flux/internal/core"
	"flux/internal/installment"
	"flux/internal/ledger"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	writeJSON(w, http.StatusOK, newProfileJSON(st.Profile()))
}

// handleUpdateProfile edits the household settings. Plan and access are
// managed outside the API and carried over unchanged.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req profileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p := st.Profile()
	p.UserName = req.UserName
	p.PartnerName = req.PartnerName
	p.Mode = core.AppMode(req.Mode)
	p.Theme = core.Theme(req.Theme)

	saved, err := st.UpdateProfile(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileJSON(saved))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	notes := st.Notifications()
	out := make([]notificationJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, newNotificationJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	if err := st.MarkNotificationRead(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMonth(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	writeJSON(w, http.StatusOK, newMonthJSON(st.SelectedMonth()))
}

func (s *Server) handleSelectMonth(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req monthRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := core.NewMonth(req.Year, req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := st.Select(m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMonthJSON(st.SelectedMonth()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	writeJSON(w, http.StatusOK, newDashboardJSON(st.Dashboard()))
}

type overviewJSON struct {
	Month          core.Month           `json:"month"`
	Totals         totalsJSON           `json:"totals"`
	ClosingBalance core.Money           `json:"closing_balance"`
	NextOpening    core.Money           `json:"next_opening"`
	ByCategory     []categoryAmountJSON `json:"by_category"`
}

// handleOverview summarizes ?month=YYYY-MM, defaulting to the selected month.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	m, err := parseMonthQuery(r, st.SelectedMonth())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ov := st.Overview(m)
	out := overviewJSON{
		Month: ov.Month,
		Totals: totalsJSON{
			Income:  ov.Totals.Income,
			Expense: ov.Totals.Expense,
			Result:  ov.Totals.Result,
		},
		ClosingBalance: ov.ClosingBalance,
		NextOpening:    ov.NextOpening,
		ByCategory:     make([]categoryAmountJSON, 0, len(ov.ByCategory)),
	}
	for _, c := range ov.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountJSON{Name: c.Name, Amount: c.Amount})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreviewInstallments shows how an amount would be split without
// storing anything.
func (s *Server) handlePreviewInstallments(w http.ResponseWriter, r *http.Request, _ *ledger.Store) {
	var req previewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parts, err := installment.Split(req.Amount, req.Installments, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPreviewJSON(parts))
}
