//go:generate go run go.uber.org/mock/mockgen -source=slot_service.go -destination=../mocks/mock_slot_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Pk1316/slot-swapper-backend/domain"
	"github.com/Pk1316/slot-swapper-backend/errors"
	"github.com/Pk1316/slot-swapper-backend/repositories"
)

var validate = validator.New()

type CreateSlotInput struct {
	Title     string    `validate:"required,min=3,max=50"`
	StartTime time.Time `validate:"required"`
	EndTime   time.Time `validate:"required"`
	Status    domain.SlotStatus
}

type UpdateSlotInput struct {
	Title     *string `validate:"omitempty,min=3,max=50"`
	StartTime *time.Time
	EndTime   *time.Time
	Status    *domain.SlotStatus
}

type ISlotService interface {
	Create(ctx context.Context, ownerID string, in CreateSlotInput) (domain.Slot, error)
	MySlots(ctx context.Context, ownerID string) ([]domain.Slot, error)
	Update(ctx context.Context, ownerID, slotID string, in UpdateSlotInput) (domain.Slot, error)
	Delete(ctx context.Context, ownerID, slotID string) error
}

// SlotService covers the owner-driven part of a slot's lifecycle: create,
// list, edit, delete, and the BUSY <-> SWAPPABLE toggle. Slots locked by a
// pending swap reject every owner mutation; only the coordinator may touch
// them.
type SlotService struct {
	slots repositories.ISlotRepository
	log   *slog.Logger
}

func NewSlotService(slots repositories.ISlotRepository, log *slog.Logger) *SlotService {
	return &SlotService{slots: slots, log: log}
}

func (s *SlotService) Create(ctx context.Context, ownerID string, in CreateSlotInput) (domain.Slot, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Slot{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if !in.StartTime.Before(in.EndTime) {
		return domain.Slot{}, errors.ErrInvalidTimeRange
	}
	status := in.Status
	if status == "" {
		status = domain.SlotBusy
	}
	if status != domain.SlotBusy && status != domain.SlotSwappable {
		return domain.Slot{}, errors.ErrInvalidState
	}

	slot := domain.Slot{
		Title:     in.Title,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		OwnerID:   ownerID,
		Status:    status,
	}
	if err := s.slots.Create(&slot); err != nil {
		return domain.Slot{}, err
	}
	s.log.Debug("slot created", "slot", slot.ID, "owner", ownerID)
	return slot, nil
}

func (s *SlotService) MySlots(ctx context.Context, ownerID string) ([]domain.Slot, error) {
	return s.slots.ListByOwner(ownerID)
}

func (s *SlotService) Update(ctx context.Context, ownerID, slotID string, in UpdateSlotInput) (domain.Slot, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Slot{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	slot, err := s.slots.GetByID(slotID)
	if err != nil {
		return domain.Slot{}, err
	}
	if slot.OwnerID != ownerID {
		return domain.Slot{}, errors.ErrNotOwner
	}
	if slot.Locked() {
		return domain.Slot{}, errors.ErrSlotLocked
	}

	if in.Title != nil {
		slot.Title = *in.Title
	}
	if in.StartTime != nil {
		slot.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		slot.EndTime = *in.EndTime
	}
	if !slot.StartTime.Before(slot.EndTime) {
		return domain.Slot{}, errors.ErrInvalidTimeRange
	}
	if in.Status != nil {
		if !slot.OwnerCanSet(*in.Status) {
			return domain.Slot{}, errors.ErrInvalidState
		}
		slot.Status = *in.Status
	}

	// Put re-checks the version marker: if the coordinator locked the slot
	// between our read and this write, the edit loses with ErrConflict.
	return s.slots.Put(slot)
}

func (s *SlotService) Delete(ctx context.Context, ownerID, slotID string) error {
	slot, err := s.slots.GetByID(slotID)
	if err != nil {
		return err
	}
	if slot.OwnerID != ownerID {
		return errors.ErrNotOwner
	}
	if slot.Locked() {
		return errors.ErrSlotLocked
	}
	if err := s.slots.Delete(slotID); err != nil {
		return err
	}
	s.log.Debug("slot deleted", "slot", slotID, "owner", ownerID)
	return nil
}
