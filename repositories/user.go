//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

const (
	userIDPrefix    = "user:id:"
	userEmailPrefix = "user:email:"
)

type IUserRepository interface {
	Create(user *domain.User) error
	GetByID(id string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
}

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func userIDKey(id string) []byte {
	return []byte(userIDPrefix + id)
}

func userEmailKey(email string) []byte {
	return []byte(userEmailPrefix + email)
}

// Create persists a user under its ID and indexes the email for login
// lookups. The email must be unique.
func (u *UserRepository) Create(user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	data, err := cbor.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return u.store.Update(func(txn *Txn) error {
		if _, err := txn.Get(userEmailKey(user.Email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userIDKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(userEmailKey(user.Email), []byte(user.ID))
	})
}

func (u *UserRepository) GetByID(id string) (domain.User, error) {
	var user domain.User
	err := u.store.View(func(txn *Txn) error {
		var err error
		user, err = u.GetTxn(txn, id)
		return err
	})
	return user, err
}

// GetTxn resolves a user by ID inside a caller-owned transaction. The swap
// coordinator uses it to verify that a slot's owner is an existing account.
func (u *UserRepository) GetTxn(txn *Txn, id string) (domain.User, error) {
	item, err := txn.Get(userIDKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	var user domain.User
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &user)
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.store.View(func(txn *Txn) error {
		ref, err := txn.Get(userEmailKey(email))
		if err == badger.ErrKeyNotFound {
			return errors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user email index: %w", err)
		}
		id, err := ref.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read user email index: %w", err)
		}
		user, err = u.GetTxn(txn, string(id))
		return err
	})
	return user, err
}
