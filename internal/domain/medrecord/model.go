package medrecord

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDispensed Status = "dispensed"
)

// DispensedItem is one line handed out by the pharmacy, priced at the unit
// price in stock when it was dispensed.
type DispensedItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type MedicalRecord struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	RecordNo            string          `db:"record_no" json:"record_no"`
	PatientID           uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID            *uuid.UUID      `db:"doctor_id" json:"doctor_id,omitempty"`
	Diagnosis           string          `db:"diagnosis" json:"diagnosis"`
	PrescribedTreatment string          `db:"prescribed_treatment" json:"prescribed_treatment"`
	TreatmentQuantities string          `db:"treatment_quantities" json:"treatment_quantities"`
	TestResults         json.RawMessage `db:"test_results" json:"test_results"`
	DispensedItems      []DispensedItem `db:"dispensed_items" json:"dispensed_items,omitempty"`
	Status              Status          `db:"status" json:"status"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

func (r *MedicalRecord) IsDispensed() bool {
	return r.Status == StatusDispensed
}

// MarkDispensed records what was handed out. It can only happen once.
func (r *MedicalRecord) MarkDispensed(items []DispensedItem) error {
	if r.IsDispensed() {
		return fmt.Errorf("%w: record %s", ErrAlreadyDispensed, r.RecordNo)
	}
	r.DispensedItems = items
	r.Status = StatusDispensed
	return nil
}

// Items parses the record's prescription.
func (r *MedicalRecord) Items() ([]Item, error) {
	return ParsePrescription(r.PrescribedTreatment, r.TreatmentQuantities)
}

// View is the read-only summary shown to clinicians.
func (r *MedicalRecord) View() map[string]interface{} {
	doctor := "N/A"
	if r.DoctorID != nil {
		doctor = r.DoctorID.String()
	}
	return map[string]interface{}{
		"record_no":  r.RecordNo,
		"patient_id": r.PatientID,
		"doctor":     doctor,
		"diagnosis":  r.Diagnosis,
		"treatment":  r.PrescribedTreatment,
		"tests":      r.TestResults,
		"created_at": r.CreatedAt,
	}
}

// NewRecordNo builds "REC" + UTC timestamp + a short random suffix so records
// created in the same second stay unique.
func NewRecordNo(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return "REC" + now.UTC().Format("20060102150405") + suffix
}
