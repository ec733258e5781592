package http

import (
	"net/http"

	"flux/internal/ledger"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	cards := st.Cards()
	out := make([]cardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, newCardJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req cardRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.AddCard(r.Context(), req.toCard())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCardJSON(saved))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req cardRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.UpdateCard(r.Context(), r.PathValue("id"), req.toCard())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCardJSON(saved))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	if err := st.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCardStatement returns the open statement of one card as of today.
func (s *Server) handleCardStatement(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	statement, err := st.CardStatement(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatementJSON(statement))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	goals := st.Goals()
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req goalRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.AddGoal(r.Context(), req.toGoal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGoalJSON(saved))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req goalRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.UpdateGoal(r.Context(), r.PathValue("id"), req.toGoal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalJSON(saved))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	if err := st.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	cats := st.Categories()
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req categoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.AddCategory(r.Context(), req.toCategory())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryJSON(saved))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	var req categoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := st.UpdateCategory(r.Context(), r.PathValue("id"), req.toCategory())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryJSON(saved))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, st *ledger.Store) {
	if err := st.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
