package repositories

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Pk1316/slot-swapper-backend/errors"
)

// Txn aliases the underlying Badger transaction so that callers (the swap
// coordinator in particular) can span several repositories in one atomic
// read-validate-write sequence without importing the storage driver.
type Txn = badger.Txn

const (
	maxTxnRetries = 3
	retryBackoff  = 10 * time.Millisecond
)

// Store wraps the shared BadgerDB handle. All repositories of this package
// operate on the same database, which is what makes a single transaction
// across slots, swap records and users possible.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Update runs fn in a read-write transaction. Badger detects read-write
// conflicts at commit time; those are retried a small fixed number of times
// with backoff, then surfaced as ErrConflict for the caller to handle.
func (s *Store) Update(fn func(txn *Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = s.db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
		s.log.Debug("transaction conflict, retrying", "attempt", attempt+1)
		time.Sleep(retryBackoff << attempt)
	}
	return errors.ErrConflict
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(txn *Txn) error) error {
	return s.db.View(fn)
}
