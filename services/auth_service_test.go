package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Pk1316/slot-swapper-backend/auth"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

const testPassword = "Sup3r-secret-pass!"

func newTestAuthService(t *testing.T) (*AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewAuthService(env.users, time.Hour), env
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("creates a user and hands back a valid token", func(t *testing.T) {
		req := require.New(t)
		service, env := newTestAuthService(t)

		token, user, err := service.Signup("Alice", "alice@test.com", testPassword)
		req.NoError(err)
		req.NotEmpty(token)
		req.NotEmpty(user.ID)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(user.ID, claims.UserID)

		// The stored record never carries the plain password.
		stored, err := env.users.GetByID(user.ID)
		req.NoError(err)
		req.NotEqual(testPassword, stored.PasswordHash)
		req.NotEmpty(stored.PasswordHash)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestAuthService(t)

		_, _, err := service.Signup("Alice", "alice@test.com", testPassword)
		req.NoError(err)

		_, _, err = service.Signup("Impostor", "alice@test.com", testPassword)
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})

	t.Run("rejects a weak password before touching storage", func(t *testing.T) {
		req := require.New(t)
		service, env := newTestAuthService(t)

		_, _, err := service.Signup("Alice", "alice@test.com", "short")
		req.ErrorIs(err, errors.ErrInvalidPassword)

		_, err = env.users.GetByEmail("alice@test.com")
		req.ErrorIs(err, errors.ErrNotFound)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("succeeds with the right credentials", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestAuthService(t)

		_, created, err := service.Signup("Alice", "alice@test.com", testPassword)
		req.NoError(err)

		token, user, err := service.Login("alice@test.com", testPassword)
		req.NoError(err)
		req.Equal(created.ID, user.ID)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(created.ID, claims.UserID)
	})

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestAuthService(t)

		_, _, err := service.Signup("Alice", "alice@test.com", testPassword)
		req.NoError(err)

		_, _, unknownErr := service.Login("nobody@test.com", testPassword)
		req.ErrorIs(unknownErr, errors.ErrInvalidCredentials)

		_, _, wrongErr := service.Login("alice@test.com", "Wrong-passw0rd!!")
		req.ErrorIs(wrongErr, errors.ErrInvalidCredentials)

		req.Equal(unknownErr, wrongErr, "failure modes must be indistinguishable")
	})
}
