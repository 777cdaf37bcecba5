package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
)

func newTestSlotService(t *testing.T) (*SlotService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewSlotService(env.slots, slog.Default()), env
}

func validCreateInput() CreateSlotInput {
	start := time.Now().UTC().Truncate(time.Second)
	return CreateSlotInput{
		Title:     "Weekly review",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.SlotStatus) *domain.SlotStatus { return &s }

func TestSlotService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults a new slot to busy", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)
		req.Equal(domain.SlotBusy, slot.Status)
		req.Equal("alice", slot.OwnerID)
		req.NotEmpty(slot.ID)
	})

	t.Run("accepts an explicit swappable status", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		in := validCreateInput()
		in.Status = domain.SlotSwappable
		slot, err := service.Create(ctx, "alice", in)
		req.NoError(err)
		req.Equal(domain.SlotSwappable, slot.Status)
	})

	t.Run("never accepts the lock status from a caller", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		in := validCreateInput()
		in.Status = domain.SlotSwapPending
		_, err := service.Create(ctx, "alice", in)
		req.ErrorIs(err, errors.ErrInvalidState)
	})

	t.Run("rejects an inverted time range", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		in := validCreateInput()
		in.StartTime, in.EndTime = in.EndTime, in.StartTime
		_, err := service.Create(ctx, "alice", in)
		req.ErrorIs(err, errors.ErrInvalidTimeRange)
	})

	t.Run("rejects a zero-length slot", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		in := validCreateInput()
		in.EndTime = in.StartTime
		_, err := service.Create(ctx, "alice", in)
		req.ErrorIs(err, errors.ErrInvalidTimeRange)
	})

	t.Run("rejects a too-short title", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		in := validCreateInput()
		in.Title = "ab"
		_, err := service.Create(ctx, "alice", in)
		req.ErrorIs(err, errors.ErrInvalidInput)
	})
}

func TestSlotService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies partial edits", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)

		updated, err := service.Update(ctx, "alice", slot.ID, UpdateSlotInput{
			Title:  strPtr("Renamed"),
			Status: statusPtr(domain.SlotSwappable),
		})
		req.NoError(err)
		req.Equal("Renamed", updated.Title)
		req.Equal(domain.SlotSwappable, updated.Status)
		req.Equal(slot.StartTime, updated.StartTime)
	})

	t.Run("only the owner may edit", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)

		_, err = service.Update(ctx, "bob", slot.ID, UpdateSlotInput{Title: strPtr("Hijacked")})
		req.ErrorIs(err, errors.ErrNotOwner)
	})

	t.Run("a locked slot rejects every owner edit", func(t *testing.T) {
		req := require.New(t)
		service, env := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)
		env.forceStatus(t, slot.ID, domain.SlotSwapPending)

		_, err = service.Update(ctx, "alice", slot.ID, UpdateSlotInput{Title: strPtr("Renamed")})
		req.ErrorIs(err, errors.ErrSlotLocked)
	})

	t.Run("owners cannot set the lock status themselves", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)

		_, err = service.Update(ctx, "alice", slot.ID, UpdateSlotInput{
			Status: statusPtr(domain.SlotSwapPending),
		})
		req.ErrorIs(err, errors.ErrInvalidState)
	})

	t.Run("an edit may not invert the time range", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)

		badEnd := slot.StartTime.Add(-time.Minute)
		_, err = service.Update(ctx, "alice", slot.ID, UpdateSlotInput{EndTime: &badEnd})
		req.ErrorIs(err, errors.ErrInvalidTimeRange)
	})
}

func TestSlotService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an unlocked slot", func(t *testing.T) {
		req := require.New(t)
		service, env := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)
		req.NoError(service.Delete(ctx, "alice", slot.ID))

		_, err = env.slots.GetByID(slot.ID)
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("only the owner may delete", func(t *testing.T) {
		req := require.New(t)
		service, _ := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)
		req.ErrorIs(service.Delete(ctx, "bob", slot.ID), errors.ErrNotOwner)
	})

	t.Run("a locked slot cannot be deleted", func(t *testing.T) {
		req := require.New(t)
		service, env := newTestSlotService(t)

		slot, err := service.Create(ctx, "alice", validCreateInput())
		req.NoError(err)
		env.forceStatus(t, slot.ID, domain.SlotSwapPending)

		req.ErrorIs(service.Delete(ctx, "alice", slot.ID), errors.ErrSlotLocked)
	})
}

func TestSlotService_MySlots(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	service, _ := newTestSlotService(t)

	first := validCreateInput()
	second := validCreateInput()
	second.StartTime = second.StartTime.Add(2 * time.Hour)
	second.EndTime = second.EndTime.Add(2 * time.Hour)

	_, err := service.Create(ctx, "alice", second)
	req.NoError(err)
	created, err := service.Create(ctx, "alice", first)
	req.NoError(err)
	_, err = service.Create(ctx, "bob", validCreateInput())
	req.NoError(err)

	mine, err := service.MySlots(ctx, "alice")
	req.NoError(err)
	req.Len(mine, 2)
	req.Equal(created.ID, mine[0].ID, "earliest slot first")
}
