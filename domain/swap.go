package domain

import (
	"time"
)

type SwapStatus string

const (
	SwapPending  SwapStatus = "PENDING"
	SwapAccepted SwapStatus = "ACCEPTED"
	SwapRejected SwapStatus = "REJECTED"
)

func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s SwapStatus) Terminal() bool {
	return s == SwapAccepted || s == SwapRejected
}

// SwapRequest is a proposal to exchange ownership of two slots.
//
// MySlotID is owned by the requester at creation, TheirSlotID by the
// responder. Records are never deleted; a resolved request stays around as
// an audit trail of who swapped what with whom.
type SwapRequest struct {
	ID          string     `cbor:"id"`
	RequesterID string     `cbor:"requester_id"`
	ResponderID string     `cbor:"responder_id"`
	MySlotID    string     `cbor:"my_slot_id"`
	TheirSlotID string     `cbor:"their_slot_id"`
	Status      SwapStatus `cbor:"status"`
	Version     uint64     `cbor:"version"`
	CreatedAt   time.Time  `cbor:"created_at"`
	ResolvedAt  *time.Time `cbor:"resolved_at,omitempty"`
}
