package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

func Test_User_Create_And_Lookup(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestStore(t))

	user := domain.User{Name: "Alice", Email: "alice@test.com", PasswordHash: "hash"}
	req.NoError(repository.Create(&user))
	req.NotEmpty(user.ID)

	byID, err := repository.GetByID(user.ID)
	req.NoError(err)
	req.Equal(user.Email, byID.Email)

	byEmail, err := repository.GetByEmail(user.Email)
	req.NoError(err)
	req.Equal(user.ID, byEmail.ID)
}

func Test_User_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestStore(t))

	first := domain.User{Name: "Alice", Email: "alice@test.com", PasswordHash: "hash"}
	req.NoError(repository.Create(&first))

	second := domain.User{Name: "Impostor", Email: "alice@test.com", PasswordHash: "hash"}
	req.ErrorIs(repository.Create(&second), errors.ErrUserAlreadyExists)
}

func Test_User_Missing(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestStore(t))

	_, err := repository.GetByID("nope")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repository.GetByEmail("nope@test.com")
	req.ErrorIs(err, errors.ErrNotFound)
}
