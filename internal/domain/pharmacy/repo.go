package pharmacy

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepoint/hms/internal/domain/medrecord"
)

type Repository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	// GetForUpdate locks the pharmacy row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	UpdateInventory(ctx context.Context, id uuid.UUID, inv Inventory) error
	List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error)
}

// RecordStore is the part of the medical record repository dispensing needs.
type RecordStore interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*medrecord.MedicalRecord, error)
	Update(ctx context.Context, r *medrecord.MedicalRecord) error
}
