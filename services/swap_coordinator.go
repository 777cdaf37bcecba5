//go:generate go run go.uber.org/mock/mockgen -source=swap_coordinator.go -destination=../mocks/mock_swap_coordinator.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
	"github.com/Pk1316/slot-swapper-backend/notify"
	"github.com/Pk1316/slot-swapper-backend/repositories"
)

// Requests groups a user's swap records by direction, both newest first.
type Requests struct {
	Incoming []domain.SwapRequest
	Outgoing []domain.SwapRequest
}

type ISwapCoordinator interface {
	Propose(ctx context.Context, requesterID, mySlotID, theirSlotID string) (domain.SwapRequest, error)
	Respond(ctx context.Context, requestID, responderID string, accept bool) (domain.SwapRequest, error)
	SwappableSlots(ctx context.Context, userID string) ([]domain.Slot, error)
	MyRequests(ctx context.Context, userID string) (Requests, error)
}

// SwapCoordinator owns every transition in and out of SWAP_PENDING and every
// transition out of a PENDING swap record. Nothing else in the system is
// allowed to touch those states.
//
// Both mutating operations run as one storage transaction across the slot
// and swap-record collections: the read-validate-write sequence either
// commits completely or leaves no trace. Concurrent callers racing for the
// same slot are serialized by the store's conflict detection; the loser is
// re-run against fresh state and fails validation instead of double-locking.
type SwapCoordinator struct {
	store    *repositories.Store
	slots    *repositories.SlotRepository
	swaps    *repositories.SwapRequestRepository
	users    *repositories.UserRepository
	notifier notify.Notifier
	log      *slog.Logger
}

func NewSwapCoordinator(
	store *repositories.Store,
	slots *repositories.SlotRepository,
	swaps *repositories.SwapRequestRepository,
	users *repositories.UserRepository,
	notifier notify.Notifier,
	log *slog.Logger,
) *SwapCoordinator {
	return &SwapCoordinator{
		store:    store,
		slots:    slots,
		swaps:    swaps,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Propose creates a PENDING swap record for two SWAPPABLE slots and locks
// both by moving them to SWAP_PENDING.
//
// Preconditions are checked in a fixed order, each with its own error:
// both slots exist (ErrNotFound), the requester owns the first slot
// (ErrNotOwner), the slots have different owners (ErrSelfSwap), both slots
// are SWAPPABLE (ErrInvalidState), and the counter-party resolves to an
// existing account (ErrMissingOwner).
func (c *SwapCoordinator) Propose(ctx context.Context, requesterID, mySlotID, theirSlotID string) (domain.SwapRequest, error) {
	var record domain.SwapRequest

	err := c.store.Update(func(txn *repositories.Txn) error {
		mySlot, err := c.slots.GetTxn(txn, mySlotID)
		if err != nil {
			return err
		}
		theirSlot, err := c.slots.GetTxn(txn, theirSlotID)
		if err != nil {
			return err
		}
		if mySlot.OwnerID != requesterID {
			return errors.ErrNotOwner
		}
		if mySlot.OwnerID == theirSlot.OwnerID {
			return errors.ErrSelfSwap
		}
		if mySlot.Status != domain.SlotSwappable || theirSlot.Status != domain.SlotSwappable {
			return errors.ErrInvalidState
		}
		if theirSlot.OwnerID == "" {
			return errors.ErrMissingOwner
		}
		if _, err := c.users.GetTxn(txn, theirSlot.OwnerID); err != nil {
			if err == errors.ErrNotFound {
				return errors.ErrMissingOwner
			}
			return err
		}

		record = domain.SwapRequest{
			ID:          uuid.NewString(),
			RequesterID: requesterID,
			ResponderID: theirSlot.OwnerID,
			MySlotID:    mySlot.ID,
			TheirSlotID: theirSlot.ID,
			Status:      domain.SwapPending,
			CreatedAt:   time.Now().UTC(),
		}
		if err := c.swaps.CreateTxn(txn, &record); err != nil {
			return err
		}

		mySlot.Status = domain.SlotSwapPending
		theirSlot.Status = domain.SlotSwapPending
		if err := c.slots.SetTxn(txn, &mySlot); err != nil {
			return err
		}
		return c.slots.SetTxn(txn, &theirSlot)
	})
	if err != nil {
		return domain.SwapRequest{}, err
	}

	c.log.Info("swap proposed",
		"request", record.ID, "requester", requesterID, "responder", record.ResponderID)
	c.dispatch(func() {
		payload := record
		c.notifier.Emit(notify.EventSwapIncoming, record.ResponderID, payload)
		c.notifier.Emit(notify.EventSwapOutgoing, record.RequesterID, payload)
		c.emailProposed(record)
	})
	return record, nil
}

// Respond resolves a PENDING record. Accepting exchanges the owners of both
// slots and parks them as BUSY; rejecting reverts both slots to SWAPPABLE.
// A record that is already terminal yields ErrAlreadyProcessed, which makes
// the operation safe to retry or double-submit.
func (c *SwapCoordinator) Respond(ctx context.Context, requestID, responderID string, accept bool) (domain.SwapRequest, error) {
	var record domain.SwapRequest

	err := c.store.Update(func(txn *repositories.Txn) error {
		var err error
		record, err = c.swaps.GetTxn(txn, requestID)
		if err != nil {
			return err
		}
		if record.ResponderID != responderID {
			return errors.ErrNotResponder
		}
		if record.Status != domain.SwapPending {
			return errors.ErrAlreadyProcessed
		}

		now := time.Now().UTC()
		record.ResolvedAt = &now

		if accept {
			record.Status = domain.SwapAccepted
			if err := c.exchangeOwners(txn, &record); err != nil {
				return err
			}
		} else {
			record.Status = domain.SwapRejected
			if err := c.releaseSlots(txn, record); err != nil {
				return err
			}
		}
		return c.swaps.SetTxn(txn, &record)
	})
	if err != nil {
		return domain.SwapRequest{}, err
	}

	c.log.Info("swap resolved",
		"request", record.ID, "status", record.Status, "responder", responderID)
	c.dispatch(func() {
		payload := record
		c.notifier.Emit(notify.EventSwapUpdated, record.RequesterID, payload)
		c.notifier.Emit(notify.EventSwapUpdated, record.ResponderID, payload)
		c.emailResolved(record)
	})
	return record, nil
}

// exchangeOwners performs the accept path on both slots. Each slot must
// still carry the SWAP_PENDING lock this record placed on it; anything else
// means an outside process touched a locked slot and the whole resolution
// aborts before partial ownership can be observed.
func (c *SwapCoordinator) exchangeOwners(txn *repositories.Txn, record *domain.SwapRequest) error {
	mySlot, err := c.slots.GetTxn(txn, record.MySlotID)
	if err != nil {
		return err
	}
	theirSlot, err := c.slots.GetTxn(txn, record.TheirSlotID)
	if err != nil {
		return err
	}
	if mySlot.Status != domain.SlotSwapPending || theirSlot.Status != domain.SlotSwapPending {
		return errors.ErrInvalidState
	}

	mySlot.OwnerID, theirSlot.OwnerID = theirSlot.OwnerID, mySlot.OwnerID
	mySlot.Status = domain.SlotBusy
	theirSlot.Status = domain.SlotBusy

	if err := c.slots.SetTxn(txn, &mySlot); err != nil {
		return err
	}
	return c.slots.SetTxn(txn, &theirSlot)
}

// releaseSlots performs the reject path. Only slots still holding the
// SWAP_PENDING lock are reverted to SWAPPABLE; a slot found in any other
// status was moved by an outside process while locked, which is reported
// loudly instead of being overwritten.
func (c *SwapCoordinator) releaseSlots(txn *repositories.Txn, record domain.SwapRequest) error {
	for _, id := range []string{record.MySlotID, record.TheirSlotID} {
		slot, err := c.slots.GetTxn(txn, id)
		if err != nil {
			if err == errors.ErrNotFound {
				c.log.Warn("locked slot vanished during rejection",
					"request", record.ID, "slot", id)
				continue
			}
			return err
		}
		if slot.Status != domain.SlotSwapPending {
			c.log.Warn("locked slot was moved outside the coordinator",
				"request", record.ID, "slot", id, "status", slot.Status)
			continue
		}
		slot.Status = domain.SlotSwappable
		if err := c.slots.SetTxn(txn, &slot); err != nil {
			return err
		}
	}
	return nil
}

// SwappableSlots lists every slot the user could request, i.e. all
// SWAPPABLE slots owned by somebody else.
func (c *SwapCoordinator) SwappableSlots(ctx context.Context, userID string) ([]domain.Slot, error) {
	return c.slots.ListSwappable(userID)
}

// MyRequests lists the user's incoming and outgoing swap records.
func (c *SwapCoordinator) MyRequests(ctx context.Context, userID string) (Requests, error) {
	incoming, err := c.swaps.ListByResponder(userID)
	if err != nil {
		return Requests{}, err
	}
	outgoing, err := c.swaps.ListByRequester(userID)
	if err != nil {
		return Requests{}, err
	}
	return Requests{Incoming: incoming, Outgoing: outgoing}, nil
}

// dispatch runs notification side effects after the transaction committed.
// It never blocks the caller and a panicking notifier cannot take the
// request down with it.
func (c *SwapCoordinator) dispatch(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("notification dispatch panicked", "panic", r)
			}
		}()
		fn()
	}()
}

func (c *SwapCoordinator) emailProposed(record domain.SwapRequest) {
	requester, err := c.users.GetByID(record.RequesterID)
	if err != nil {
		c.log.Warn("cannot resolve requester for email", "request", record.ID, "error", err)
		return
	}
	responder, err := c.users.GetByID(record.ResponderID)
	if err != nil {
		c.log.Warn("cannot resolve responder for email", "request", record.ID, "error", err)
		return
	}
	mySlot, _ := c.slots.GetByID(record.MySlotID)
	theirSlot, _ := c.slots.GetByID(record.TheirSlotID)

	c.notifier.SendEmail(
		responder.Email,
		"New swap request on SlotSwapper",
		fmt.Sprintf("Hey %s,\n\n%s has requested to swap their %q with your %q.\n\nLog in to SlotSwapper to accept or reject this request.",
			responder.Name, requester.Name, mySlot.Title, theirSlot.Title),
	)
}

func (c *SwapCoordinator) emailResolved(record domain.SwapRequest) {
	requester, err := c.users.GetByID(record.RequesterID)
	if err != nil {
		c.log.Warn("cannot resolve requester for email", "request", record.ID, "error", err)
		return
	}
	responder, err := c.users.GetByID(record.ResponderID)
	if err != nil {
		c.log.Warn("cannot resolve responder for email", "request", record.ID, "error", err)
		return
	}

	if record.Status == domain.SwapAccepted {
		c.notifier.SendEmail(
			requester.Email,
			"Your swap request was accepted",
			fmt.Sprintf("Hey %s,\n\n%s accepted your swap request. Your calendars have been updated.",
				requester.Name, responder.Name),
		)
		return
	}
	c.notifier.SendEmail(
		requester.Email,
		"Your swap request was rejected",
		fmt.Sprintf("Hey %s,\n\n%s rejected your swap request. You can try swapping with another available slot.",
			requester.Name, responder.Name),
	)
}
