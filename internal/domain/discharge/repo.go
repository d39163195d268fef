package discharge

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/hms/internal/domain/identity"
)

type Repository interface {
	Create(ctx context.Context, d *Details) error
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Details, error)
}

// PatientStore is the slice of the patient repository a discharge needs.
type PatientStore interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
	MarkDischarged(ctx context.Context, id uuid.UUID) error
}
