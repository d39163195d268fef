package ward

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/hms/internal/platform/db"
)

type Service struct {
	rooms Repository
	tx    db.TxRunner
}

func NewService(rooms Repository, tx db.TxRunner) *Service {
	return &Service{rooms: rooms, tx: tx}
}

func (s *Service) Create(ctx context.Context, r *Room) error {
	r.RoomNo = strings.TrimSpace(r.RoomNo)
	if r.RoomNo == "" {
		return fmt.Errorf("%w: room_no is required", ErrInvalidInput)
	}
	if r.Type == "" {
		r.Type = RoomGeneral
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: room type %q", ErrInvalidInput, r.Type)
	}
	r.Available = true
	r.AssignedPatientID = nil
	return s.rooms.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.rooms.GetByID(ctx, id)
}

// List returns a page of rooms and the occupancy across every room that
// matches f.
func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Room, int, Occupancy, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, 0, Occupancy{}, fmt.Errorf("%w: room type %q", ErrInvalidInput, f.Type)
	}
	items, total, err := s.rooms.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, Occupancy{}, err
	}
	occ, err := s.rooms.Occupancy(ctx, f)
	if err != nil {
		return nil, 0, Occupancy{}, err
	}
	return items, total, occ, nil
}

// Assign gives the room to the patient. A patient holds at most one room.
func (s *Service) Assign(ctx context.Context, roomID, patientID uuid.UUID) (*Room, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	var out *Room
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		held, err := s.rooms.FindByPatientForUpdate(ctx, patientID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: room %s", ErrPatientHasRoom, held.RoomNo)
		case !errors.Is(err, ErrNotFound):
			return err
		}
		r, err := s.rooms.GetForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		if err := r.Assign(patientID); err != nil {
			return err
		}
		if err := s.rooms.Update(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("room_no", out.RoomNo).Str("patient_id", patientID.String()).Msg("room assigned")
	return out, nil
}

func (s *Service) Release(ctx context.Context, roomID uuid.UUID) (*Room, error) {
	var out *Room
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		r, err := s.rooms.GetForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		if err := r.Release(); err != nil {
			return err
		}
		if err := s.rooms.Update(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("room_no", out.RoomNo).Msg("room released")
	return out, nil
}

// ReleaseForPatient frees the room the patient holds. It returns (nil, nil)
// when the patient holds none. Call it inside a transaction.
func (s *Service) ReleaseForPatient(ctx context.Context, patientID uuid.UUID) (*Room, error) {
	r, err := s.rooms.FindByPatientForUpdate(ctx, patientID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.Release(); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
