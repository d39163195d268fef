package discharge

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carepoint/hms/internal/domain/identity"
)

const notAvailable = "N/A"

// Details is the immutable record written when a patient leaves. Money is
// kept as whole units.
type Details struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName        string    `db:"patient_name" json:"patient_name"`
	AssignedDoctorName string    `db:"assigned_doctor_name" json:"assigned_doctor_name"`
	Address            string    `db:"address" json:"address"`
	Mobile             string    `db:"mobile" json:"mobile"`
	Symptoms           string    `db:"symptoms" json:"symptoms"`
	AdmitDate          time.Time `db:"admit_date" json:"admit_date"`
	ReleaseDate        time.Time `db:"release_date" json:"release_date"`
	DaySpent           int       `db:"day_spent" json:"day_spent"`
	RoomCharge         int64     `db:"room_charge" json:"room_charge"`
	MedicineCost       int64     `db:"medicine_cost" json:"medicine_cost"`
	DoctorFee          int64     `db:"doctor_fee" json:"doctor_fee"`
	OtherCharge        int64     `db:"other_charge" json:"other_charge"`
	Total              int64     `db:"total" json:"total"`
	BillID             uuid.UUID `db:"bill_id" json:"bill_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func whole(d decimal.Decimal) int64 {
	return d.RoundBank(0).IntPart()
}

// NewDetails snapshots the patient and the calculation.
func NewDetails(p *identity.Patient, c Calculation, release time.Time, billID uuid.UUID) *Details {
	return &Details{
		PatientID:          p.ID,
		PatientName:        p.Name(),
		AssignedDoctorName: orNA(p.AssignedDoctorName),
		Address:            orNA(p.Address),
		Mobile:             orNA(p.Mobile),
		Symptoms:           orNA(p.Symptoms),
		AdmitDate:          dateOf(p.AdmitDate),
		ReleaseDate:        dateOf(release),
		DaySpent:           c.DayCount,
		RoomCharge:         whole(c.RoomCharge),
		MedicineCost:       whole(c.MedicineCost),
		DoctorFee:          whole(c.DoctorFee),
		OtherCharge:        whole(c.OtherCharge),
		Total:              whole(c.Total),
		BillID:             billID,
	}
}
