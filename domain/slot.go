package domain

import (
	"time"
)

// SlotStatus is a closed set. There is no fallback value: anything outside
// these three constants is rejected at the edges.
type SlotStatus string

const (
	SlotBusy        SlotStatus = "BUSY"
	SlotSwappable   SlotStatus = "SWAPPABLE"
	SlotSwapPending SlotStatus = "SWAP_PENDING"
)

func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotBusy, SlotSwappable, SlotSwapPending:
		return true
	}
	return false
}

// Slot is a unit calendar reservation with a single owner.
//
// Status moves BUSY <-> SWAPPABLE under the owner's control. SWAP_PENDING is
// reserved for the swap coordinator: it marks the slot as locked by exactly
// one in-flight proposal, and owner edits are rejected while it is set.
type Slot struct {
	ID        string     `cbor:"id"`
	Title     string     `cbor:"title"`
	StartTime time.Time  `cbor:"start_time"`
	EndTime   time.Time  `cbor:"end_time"`
	OwnerID   string     `cbor:"owner_id"`
	Status    SlotStatus `cbor:"status"`
	Version   uint64     `cbor:"version"`
	CreatedAt time.Time  `cbor:"created_at"`
}

// OwnerCanSet reports whether an owner may move the slot into the target
// status directly. SWAP_PENDING is never reachable this way.
func (s Slot) OwnerCanSet(target SlotStatus) bool {
	if s.Status == SlotSwapPending {
		return false
	}
	return target == SlotBusy || target == SlotSwappable
}

// Locked reports whether the slot is held by an in-flight swap proposal.
func (s Slot) Locked() bool {
	return s.Status == SlotSwapPending
}
