package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is one medicine's shelf entry.
type Stock struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Pharmacy struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PharmacyNo   string     `db:"pharmacy_no" json:"pharmacy_no"`
	PharmacistID *uuid.UUID `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	Medicines    Inventory  `db:"available_medicines" json:"available_medicines"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
