package messaging

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventPrescriptionDispensed = "prescription.dispensed"
	EventStockUpdated          = "pharmacy.stock_updated"
	EventPatientDischarged     = "patient.discharged"
	EventPaymentApplied        = "bill.payment_applied"
)

const serviceName = "hms-server"

type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		ServiceName: serviceName,
	}
}

type DispensedLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type PrescriptionDispensedEvent struct {
	BaseEvent
	Data PrescriptionDispensedData `json:"data"`
}

type PrescriptionDispensedData struct {
	PharmacyID      string          `json:"pharmacy_id"`
	MedicalRecordID string          `json:"medical_record_id"`
	PatientID       string          `json:"patient_id"`
	Items           []DispensedLine `json:"items"`
	DispensedAt     time.Time       `json:"dispensed_at"`
}

type StockUpdatedEvent struct {
	BaseEvent
	Data StockUpdatedData `json:"data"`
}

type StockUpdatedData struct {
	PharmacyID string `json:"pharmacy_id"`
	Medicine   string `json:"medicine"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
}

type PatientDischargedEvent struct {
	BaseEvent
	Data PatientDischargedData `json:"data"`
}

type PatientDischargedData struct {
	PatientID    string    `json:"patient_id"`
	BillID       string    `json:"bill_id"`
	DaySpent     int       `json:"day_spent"`
	Total        string    `json:"total"`
	DischargedAt time.Time `json:"discharged_at"`
}

type PaymentAppliedEvent struct {
	BaseEvent
	Data PaymentAppliedData `json:"data"`
}

type PaymentAppliedData struct {
	BillID        string `json:"bill_id"`
	PatientID     string `json:"patient_id"`
	Amount        string `json:"amount"`
	PaymentStatus string `json:"payment_status"`
}
