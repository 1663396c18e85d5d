package http

import (
	"net/http"

	"aptledger/internal/core"
)

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "list settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	setting, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err, "get setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) handleUpsertSetting(w http.ResponseWriter, r *http.Request) {
	var req upsertSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	setting, err := s.store.UpsertSetting(r.Context(), core.InsertSetting{
		Key:   req.Key,
		Value: req.Value,
	})
	if err != nil {
		writeDomainError(w, r, err, "upsert setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
