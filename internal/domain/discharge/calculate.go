package discharge

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calculation is the charge breakdown for one stay.
type Calculation struct {
	DayCount     int             `json:"day_count"`
	RoomCharge   decimal.Decimal `json:"room_charge"`
	DoctorFee    decimal.Decimal `json:"doctor_fee"`
	OtherCharge  decimal.Decimal `json:"other_charge"`
	MedicineCost decimal.Decimal `json:"medicine_cost"`
	Treatment    decimal.Decimal `json:"treatment_cost"`
	Total        decimal.Decimal `json:"total"`
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from admit to today, never less
// than one.
func DaysBetween(admit, today time.Time) int {
	days := int(dateOf(today).Sub(dateOf(admit)).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Calculate prices a stay. Callers reject negative inputs first.
func Calculate(admit, today time.Time, perDay, doctorFee, other, medicine decimal.Decimal) Calculation {
	days := DaysBetween(admit, today)
	room := perDay.Mul(decimal.NewFromInt(int64(days)))
	treatment := doctorFee.Add(other)
	return Calculation{
		DayCount:     days,
		RoomCharge:   room,
		DoctorFee:    doctorFee,
		OtherCharge:  other,
		MedicineCost: medicine,
		Treatment:    treatment,
		Total:        room.Add(medicine).Add(treatment),
	}
}
