package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "Pending"
	StatusPartial PaymentStatus = "Partial"
	StatusPaid    PaymentStatus = "Paid"
)

// Bill is a patient's running charge. TotalAmount always equals
// TreatmentCost + MedicineCost + RoomCharge; RoomCharge stays zero until
// discharge.
type Bill struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	BillNo          string          `db:"bill_no" json:"bill_no"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	MedicalRecordID *uuid.UUID      `db:"medical_record_id" json:"medical_record_id,omitempty"`
	TreatmentCost   decimal.Decimal `db:"treatment_cost" json:"treatment_cost"`
	MedicineCost    decimal.Decimal `db:"medicine_cost" json:"medicine_cost"`
	RoomCharge      decimal.Decimal `db:"room_charge" json:"room_charge"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"payment_status"`
	FinalizedAt     *time.Time      `db:"finalized_at" json:"finalized_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// CalculateTotal sums the three bill components.
func CalculateTotal(treatment, medicine, room decimal.Decimal) decimal.Decimal {
	return treatment.Add(medicine).Add(room)
}

func (b *Bill) IsFinalized() bool { return b.FinalizedAt != nil }

func (b *Bill) recompute() {
	b.TotalAmount = CalculateTotal(b.TreatmentCost, b.MedicineCost, b.RoomCharge)
}

// Accumulate adds to the running treatment and medicine costs.
func (b *Bill) Accumulate(treatment, medicine decimal.Decimal) error {
	if treatment.IsNegative() || medicine.IsNegative() {
		return fmt.Errorf("%w: treatment %s, medicine %s", ErrNegativeAmount, treatment, medicine)
	}
	if b.IsFinalized() {
		return fmt.Errorf("%w: %s", ErrBillFinalized, b.BillNo)
	}
	b.TreatmentCost = b.TreatmentCost.Add(treatment)
	b.MedicineCost = b.MedicineCost.Add(medicine)
	b.recompute()
	return nil
}

// SetRoomCharge replaces the room component and folds it into the total.
func (b *Bill) SetRoomCharge(room decimal.Decimal) error {
	if room.IsNegative() {
		return fmt.Errorf("%w: room charge %s", ErrNegativeAmount, room)
	}
	if b.IsFinalized() {
		return fmt.Errorf("%w: %s", ErrBillFinalized, b.BillNo)
	}
	b.RoomCharge = room
	b.recompute()
	return nil
}

// Finalize closes the bill to further charges. Payments are still accepted.
func (b *Bill) Finalize(at time.Time) error {
	if b.IsFinalized() {
		return fmt.Errorf("%w: %s", ErrBillFinalized, b.BillNo)
	}
	at = at.UTC()
	b.FinalizedAt = &at
	return nil
}

// ApplyPayment moves the status to Paid when amount covers the total, to
// Partial for any smaller positive amount, and leaves it alone otherwise.
// It reports whether the bill is now paid.
func (b *Bill) ApplyPayment(amount decimal.Decimal) bool {
	switch {
	case amount.GreaterThanOrEqual(b.TotalAmount):
		b.PaymentStatus = StatusPaid
	case amount.IsPositive():
		b.PaymentStatus = StatusPartial
	}
	return b.PaymentStatus == StatusPaid
}

// Details is the bill view handed to the invoice renderer.
func (b *Bill) Details() map[string]interface{} {
	return map[string]interface{}{
		"bill_no":        b.BillNo,
		"patient_id":     b.PatientID,
		"treatment_cost": b.TreatmentCost,
		"medicine_cost":  b.MedicineCost,
		"room_charge":    b.RoomCharge,
		"total":          b.TotalAmount,
		"status":         b.PaymentStatus,
		"created_at":     b.CreatedAt,
	}
}

// NewBillNo builds "BILL" + UTC timestamp + a short random suffix.
func NewBillNo(now time.Time) string {
	return "BILL" + now.UTC().Format("20060102150405") + strings.ToUpper(uuid.New().String()[:4])
}
