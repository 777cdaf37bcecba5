// Command seed loads two demo users with one swappable slot each, matching
// the walkthrough in the API docs: alice@test.com / bob@test.com, password
// "Password123!".
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/Pk1316/slot-swapper-backend/auth"
	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/internal"
	"github.com/Pk1316/slot-swapper-backend/repositories"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.LoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	store := repositories.NewStore(db, log)
	users := repositories.NewUserRepository(store)
	slots := repositories.NewSlotRepository(store, log)

	hash, err := auth.HashPassword("Password123!")
	if err != nil {
		return err
	}

	alice := domain.User{Name: "Alice", Email: "alice@test.com", PasswordHash: hash}
	bob := domain.User{Name: "Bob", Email: "bob@test.com", PasswordHash: hash}
	for _, u := range []*domain.User{&alice, &bob} {
		if err := users.Create(u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	now := time.Now().UTC().Truncate(time.Hour)
	seedSlots := []domain.Slot{
		{
			Title:     "Team Sync",
			StartTime: now,
			EndTime:   now.Add(time.Hour),
			OwnerID:   alice.ID,
			Status:    domain.SlotSwappable,
		},
		{
			Title:     "Focus Block",
			StartTime: now.Add(24 * time.Hour),
			EndTime:   now.Add(25 * time.Hour),
			OwnerID:   bob.ID,
			Status:    domain.SlotSwappable,
		},
	}
	for i := range seedSlots {
		if err := slots.Create(&seedSlots[i]); err != nil {
			return fmt.Errorf("seed slot %q: %w", seedSlots[i].Title, err)
		}
	}

	log.Info("Seeded", "users", []string{alice.Email, bob.Email}, "slots", len(seedSlots))
	return nil
}
