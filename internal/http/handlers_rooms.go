package http

import (
	"errors"
	"net/http"
	"strings"

	"aptledger/internal/core"
	"aptledger/internal/store"
)

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if number := strings.TrimSpace(r.URL.Query().Get("number")); number != "" {
		room, err := s.store.GetRoomByNumber(r.Context(), number)
		if err != nil {
			writeDomainError(w, r, err, "get room by number")
			return
		}
		writeJSON(w, http.StatusOK, room)
		return
	}

	rooms, err := s.store.ListRooms(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "list rooms")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	room, err := s.store.GetRoom(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, "get room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
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

	room, err := s.store.CreateRoom(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err, "create room")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req updateRoomRequest
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

	room, err := s.store.UpdateRoom(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err, "update room")
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, room)
}

// handleRoomUPILink builds a upi:// deep link that collects the room's
// outstanding balance. The payee VPA and display name come from the
// upiVpa and upiName settings; ?amount= overrides the due balance.
func (s *Server) handleRoomUPILink(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	room, err := s.store.GetRoom(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, "get room")
		return
	}

	vpa, err := s.settingValue(r, "upiVpa")
	if err != nil {
		writeDomainError(w, r, err, "get upiVpa setting")
		return
	}
	if vpa == "" {
		writeError(w, http.StatusUnprocessableEntity, "upiVpa setting is not configured")
		return
	}
	name, err := s.settingValue(r, "upiName")
	if err != nil {
		writeDomainError(w, r, err, "get upiName setting")
		return
	}

	amount := room.TotalDue
	if v := strings.TrimSpace(r.URL.Query().Get("amount")); v != "" {
		if amount, err = core.ParseMoney(v); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid amount")
			return
		}
	}
	if amount.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "Nothing due for this room")
		return
	}

	note := "Maintenance fee for room " + room.RoomNumber
	link, err := core.UPILink(vpa, name, amount, note)
	if err != nil {
		writeDomainError(w, r, err, "build upi link")
		return
	}

	writeJSON(w, http.StatusOK, upiLinkResponse{
		RoomNumber: room.RoomNumber,
		Amount:     amount,
		Link:       link,
	})
}

// settingValue reads a setting, treating a missing key as empty.
func (s *Server) settingValue(r *http.Request, key string) (string, error) {
	setting, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}
