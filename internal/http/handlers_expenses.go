package http

import "net/http"

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "list expenses")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	expense, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, "get expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	in, err := req.toInsert()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if in.CreatedBy == "" {
		if claims := claimsFrom(r.Context()); claims != nil {
			in.CreatedBy = claims.Username
		}
	}

	expense, err := s.store.CreateExpense(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, "create expense")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	expense, err := s.store.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err, "update expense")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, expense)
}
