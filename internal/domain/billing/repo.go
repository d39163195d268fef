package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error)
	// LatestByPatient returns the patient's most recent bill, finalized or not.
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Bill, error)
	// FindOpenForUpdate locks and returns the patient's unfinalized bill.
	FindOpenForUpdate(ctx context.Context, patientID uuid.UUID) (*Bill, error)
}
