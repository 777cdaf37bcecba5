package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

type proposeSwapRequest struct {
	MySlotID    string `json:"mySlotId"`
	TheirSlotID string `json:"theirSlotId"`
}

type respondToSwapRequest struct {
	Accept bool `json:"accept"`
}

type myRequestsResponse struct {
	Incoming []swapResponse `json:"incoming"`
	Outgoing []swapResponse `json:"outgoing"`
}

func (s *Server) handleSwappableSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.coordinator.SwappableSlots(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(slots, func(slot domain.Slot, _ int) slotResponse {
		return toSlotResponse(slot)
	}))
}

func (s *Server) handleProposeSwap(w http.ResponseWriter, r *http.Request) {
	var req proposeSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrInvalidInput)
		return
	}
	if req.MySlotID == "" || req.TheirSlotID == "" {
		s.writeError(w, errors.ErrInvalidInput)
		return
	}

	record, err := s.coordinator.Propose(r.Context(), UserID(r.Context()), req.MySlotID, req.TheirSlotID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSwapResponse(record))
}

func (s *Server) handleRespondToSwap(w http.ResponseWriter, r *http.Request) {
	var req respondToSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrInvalidInput)
		return
	}

	record, err := s.coordinator.Respond(r.Context(), r.PathValue("requestId"), UserID(r.Context()), req.Accept)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSwapResponse(record))
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.coordinator.MyRequests(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	toResponse := func(rec domain.SwapRequest, _ int) swapResponse { return toSwapResponse(rec) }
	s.writeJSON(w, http.StatusOK, myRequestsResponse{
		Incoming: lo.Map(requests.Incoming, toResponse),
		Outgoing: lo.Map(requests.Outgoing, toResponse),
	})
}
