package ward

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Ward          string
	Type          RoomType
	AvailableOnly bool
}

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)
	// FindByPatientForUpdate locks the room held by the patient, if any.
	FindByPatientForUpdate(ctx context.Context, patientID uuid.UUID) (*Room, error)
	Update(ctx context.Context, r *Room) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Room, int, error)
	Occupancy(ctx context.Context, f ListFilter) (Occupancy, error)
}
