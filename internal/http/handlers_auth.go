package http

import (
	"errors"
	"net/http"

	"aptledger/internal/auth"
	"aptledger/internal/log"
	"aptledger/internal/store"
)

// handleLogin verifies credentials and, when auth is enabled, issues a
// session token. Lookup and password failures return the same message
// so usernames can't be probed.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeDomainError(w, r, err, "login")
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed login attempt",
			"username", req.Username)
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	resp := loginResponse{User: user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user.ID, user.Username, user.Role)
		if err != nil {
			writeDomainError(w, r, err, "issue token")
			return
		}
		resp.Token = token
	}

	writeJSON(w, http.StatusOK, resp)
}
