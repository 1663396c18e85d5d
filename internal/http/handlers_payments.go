package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	roomNumber := strings.TrimSpace(r.URL.Query().Get("roomNumber"))

	if roomNumber != "" {
		payments, err := s.store.ListPaymentsByRoom(r.Context(), roomNumber)
		if err != nil {
			writeDomainError(w, r, err, "list payments by room")
			return
		}
		writeJSON(w, http.StatusOK, payments)
		return
	}

	payments, err := s.store.ListPayments(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "list payments")
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, "get payment")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// handleCreatePayment records a payment through the ledger, so room
// balances and history stay consistent with the new record.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
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

	payment, err := s.payments.RecordPayment(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, "record payment")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req updatePaymentRequest
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

	payment, err := s.payments.UpdatePayment(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err, "update payment")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, payment)
}
