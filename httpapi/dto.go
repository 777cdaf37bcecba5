package httpapi

import (
	"time"

	"github.com/Pk1316/slot-swapper-backend/domain"
)

// Wire representations of the domain records. Kept separate from the domain
// structs so storage encoding and the public API can evolve independently.

type slotResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	OwnerID   string    `json:"ownerId"`
	Status    string    `json:"status"`
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:        s.ID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		OwnerID:   s.OwnerID,
		Status:    string(s.Status),
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
	}
}

type swapResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester"`
	ResponderID string     `json:"responder"`
	MySlotID    string     `json:"mySlot"`
	TheirSlotID string     `json:"theirSlot"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

func toSwapResponse(r domain.SwapRequest) swapResponse {
	return swapResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		ResponderID: r.ResponderID,
		MySlotID:    r.MySlotID,
		TheirSlotID: r.TheirSlotID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}
