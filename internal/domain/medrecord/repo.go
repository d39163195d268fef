package medrecord

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	PatientID *uuid.UUID
	Status    Status
}

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error)
}
