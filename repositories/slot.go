//go:generate go run go.uber.org/mock/mockgen -source=slot.go -destination=../mocks/mock_slot_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

const slotPrefix = "slot:"

type ISlotRepository interface {
	Create(slot *domain.Slot) error
	GetByID(id string) (domain.Slot, error)
	Put(slot domain.Slot) (domain.Slot, error)
	Delete(id string) error
	ListByOwner(ownerID string) ([]domain.Slot, error)
	ListSwappable(excludeOwnerID string) ([]domain.Slot, error)
}

type SlotRepository struct {
	store *Store
	log   *slog.Logger
}

func NewSlotRepository(store *Store, log *slog.Logger) *SlotRepository {
	return &SlotRepository{store: store, log: log}
}

func slotKey(id string) []byte {
	return []byte(slotPrefix + id)
}

// Create persists a new slot with version 1. The ID is generated when the
// caller did not provide one.
func (r *SlotRepository) Create(slot *domain.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	slot.Version = 1
	return r.store.Update(func(txn *Txn) error {
		if _, err := txn.Get(slotKey(slot.ID)); err == nil {
			return errors.ErrConflict
		}
		return writeSlot(txn, *slot)
	})
}

func (r *SlotRepository) GetByID(id string) (domain.Slot, error) {
	var slot domain.Slot
	err := r.store.View(func(txn *Txn) error {
		var err error
		slot, err = r.GetTxn(txn, id)
		return err
	})
	return slot, err
}

// GetTxn reads a slot inside a caller-owned transaction.
func (r *SlotRepository) GetTxn(txn *Txn, id string) (domain.Slot, error) {
	item, err := txn.Get(slotKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Slot{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Slot{}, fmt.Errorf("get slot: %w", err)
	}
	var slot domain.Slot
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &slot)
	})
	if err != nil {
		return domain.Slot{}, fmt.Errorf("decode slot: %w", err)
	}
	return slot, nil
}

// SetTxn writes a slot inside a caller-owned transaction, bumping its
// version marker.
func (r *SlotRepository) SetTxn(txn *Txn, slot *domain.Slot) error {
	slot.Version++
	return writeSlot(txn, *slot)
}

// Put replaces a slot after checking that the caller read the latest version.
// A stale version means somebody else wrote in between: ErrConflict, the
// caller may re-read and retry.
func (r *SlotRepository) Put(slot domain.Slot) (domain.Slot, error) {
	err := r.store.Update(func(txn *Txn) error {
		current, err := r.GetTxn(txn, slot.ID)
		if err != nil {
			return err
		}
		if current.Version != slot.Version {
			return errors.ErrConflict
		}
		return r.SetTxn(txn, &slot)
	})
	if err != nil {
		return domain.Slot{}, err
	}
	return slot, nil
}

func (r *SlotRepository) Delete(id string) error {
	return r.store.Update(func(txn *Txn) error {
		if _, err := r.GetTxn(txn, id); err != nil {
			return err
		}
		return txn.Delete(slotKey(id))
	})
}

// ListByOwner returns all slots of one owner, ordered by start time.
func (r *SlotRepository) ListByOwner(ownerID string) ([]domain.Slot, error) {
	return r.scan(func(s domain.Slot) bool {
		return s.OwnerID == ownerID
	})
}

// ListSwappable returns every slot open for swapping that does not belong to
// the given user.
func (r *SlotRepository) ListSwappable(excludeOwnerID string) ([]domain.Slot, error) {
	return r.scan(func(s domain.Slot) bool {
		return s.Status == domain.SlotSwappable && s.OwnerID != excludeOwnerID
	})
}

func (r *SlotRepository) scan(keep func(domain.Slot) bool) ([]domain.Slot, error) {
	var slots []domain.Slot
	err := r.store.View(func(txn *Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(slotPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var slot domain.Slot
				if err := cbor.Unmarshal(val, &slot); err != nil {
					return fmt.Errorf("decode slot: %w", err)
				}
				if keep(slot) {
					slots = append(slots, slot)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}

func writeSlot(txn *Txn, slot domain.Slot) error {
	data, err := cbor.Marshal(slot)
	if err != nil {
		return fmt.Errorf("marshal slot: %w", err)
	}
	return txn.Set(slotKey(slot.ID), data)
}
