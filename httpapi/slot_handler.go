package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
	"github.com/Pk1316/slot-swapper-backend/services"
)

type createSlotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
}

type updateSlotRequest struct {
	Title     *string    `json:"title"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Status    *string    `json:"status"`
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var req createSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrInvalidInput)
		return
	}

	slot, err := s.slotService.Create(r.Context(), UserID(r.Context()), services.CreateSlotInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    domain.SlotStatus(req.Status),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSlotResponse(slot))
}

func (s *Server) handleMySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.slotService.MySlots(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lo.Map(slots, func(slot domain.Slot, _ int) slotResponse {
		return toSlotResponse(slot)
	}))
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	var req updateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrInvalidInput)
		return
	}

	in := services.UpdateSlotInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Status != nil {
		status := domain.SlotStatus(*req.Status)
		if !status.IsValid() {
			s.writeError(w, errors.ErrInvalidState)
			return
		}
		in.Status = &status
	}

	slot, err := s.slotService.Update(r.Context(), UserID(r.Context()), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSlotResponse(slot))
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.slotService.Delete(r.Context(), UserID(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
