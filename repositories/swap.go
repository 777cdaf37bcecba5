//go:generate go run go.uber.org/mock/mockgen -source=swap.go -destination=../mocks/mock_swap_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

const (
	swapPrefix    = "swap:"
	swapRefPrefix = "swapref:"
)

type ISwapRequestRepository interface {
	GetByID(id string) (domain.SwapRequest, error)
	ListByRequester(userID string) ([]domain.SwapRequest, error)
	ListByResponder(userID string) ([]domain.SwapRequest, error)
}

// SwapRequestRepository stores swap proposals under a timestamp-prefixed key
// so a reverse prefix scan yields newest-first ordering for free. A second
// "swapref" key maps the record ID to its primary key for point lookups.
// The key is formatted as "swap:{timestamp_padded}:{uuid}":
//  1. 19-digit zero padding keeps lexicographical order chronological.
//  2. The UUID disambiguates two records created at the same nanosecond.
type SwapRequestRepository struct {
	store *Store
	log   *slog.Logger
}

func NewSwapRequestRepository(store *Store, log *slog.Logger) *SwapRequestRepository {
	return &SwapRequestRepository{store: store, log: log}
}

func swapKey(r domain.SwapRequest) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", swapPrefix, r.CreatedAt.UnixNano(), r.ID))
}

func swapRefKey(id string) []byte {
	return []byte(swapRefPrefix + id)
}

// CreateTxn persists a new swap record inside a caller-owned transaction.
// Records are never deleted afterwards; they are the audit trail of every
// proposal ever made.
func (r *SwapRequestRepository) CreateTxn(txn *Txn, record *domain.SwapRequest) error {
	record.Version = 1
	key := swapKey(*record)
	if err := writeSwap(txn, key, *record); err != nil {
		return err
	}
	return txn.Set(swapRefKey(record.ID), key)
}

// GetTxn resolves a swap record by ID inside a caller-owned transaction.
func (r *SwapRequestRepository) GetTxn(txn *Txn, id string) (domain.SwapRequest, error) {
	ref, err := txn.Get(swapRefKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.SwapRequest{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.SwapRequest{}, fmt.Errorf("get swap ref: %w", err)
	}
	key, err := ref.ValueCopy(nil)
	if err != nil {
		return domain.SwapRequest{}, fmt.Errorf("read swap ref: %w", err)
	}
	item, err := txn.Get(key)
	if err != nil {
		return domain.SwapRequest{}, fmt.Errorf("get swap record: %w", err)
	}
	var record domain.SwapRequest
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	})
	if err != nil {
		return domain.SwapRequest{}, fmt.Errorf("decode swap record: %w", err)
	}
	return record, nil
}

// SetTxn rewrites an existing record in place. CreatedAt never changes, so
// the primary key stays stable.
func (r *SwapRequestRepository) SetTxn(txn *Txn, record *domain.SwapRequest) error {
	record.Version++
	return writeSwap(txn, swapKey(*record), *record)
}

func (r *SwapRequestRepository) GetByID(id string) (domain.SwapRequest, error) {
	var record domain.SwapRequest
	err := r.store.View(func(txn *Txn) error {
		var err error
		record, err = r.GetTxn(txn, id)
		return err
	})
	return record, err
}

// ListByRequester returns the user's outgoing proposals, newest first.
func (r *SwapRequestRepository) ListByRequester(userID string) ([]domain.SwapRequest, error) {
	return r.scanNewestFirst(func(rec domain.SwapRequest) bool {
		return rec.RequesterID == userID
	})
}

// ListByResponder returns the user's incoming proposals, newest first.
func (r *SwapRequestRepository) ListByResponder(userID string) ([]domain.SwapRequest, error) {
	return r.scanNewestFirst(func(rec domain.SwapRequest) bool {
		return rec.ResponderID == userID
	})
}

func (r *SwapRequestRepository) scanNewestFirst(keep func(domain.SwapRequest) bool) ([]domain.SwapRequest, error) {
	var records []domain.SwapRequest
	err := r.store.View(func(txn *Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(swapPrefix)
		// Seek past the last possible key of the prefix, then walk backwards.
		seekKey := append([]byte(swapPrefix), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record domain.SwapRequest
				if err := cbor.Unmarshal(val, &record); err != nil {
					return fmt.Errorf("decode swap record: %w", err)
				}
				if keep(record) {
					records = append(records, record)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}

func writeSwap(txn *Txn, key []byte, record domain.SwapRequest) error {
	data, err := cbor.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal swap record: %w", err)
	}
	return txn.Set(key, data)
}
