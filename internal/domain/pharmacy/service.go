package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/carepoint/hms/internal/domain/medrecord"
	"github.com/carepoint/hms/internal/platform/db"
	"github.com/carepoint/hms/internal/platform/messaging"
	"github.com/carepoint/hms/internal/platform/telemetry"
)

var tracer = otel.Tracer("github.com/carepoint/hms/internal/domain/pharmacy")

type Service struct {
	pharmacies Repository
	records    RecordStore
	tx         db.TxRunner
	events     messaging.Publisher
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewService(pharmacies Repository, records RecordStore, tx db.TxRunner) *Service {
	return &Service{
		pharmacies: pharmacies,
		records:    records,
		tx:         tx,
		events:     messaging.NopPublisher{},
		now:        time.Now,
	}
}

func (s *Service) SetPublisher(p messaging.Publisher) { s.events = p }

func (s *Service) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

func (s *Service) Create(ctx context.Context, p *Pharmacy) error {
	p.PharmacyNo = strings.TrimSpace(p.PharmacyNo)
	if p.PharmacyNo == "" {
		return fmt.Errorf("%w: pharmacy_no is required", ErrInvalidInput)
	}
	// Seed stock goes through the same rules as later updates.
	inv := Inventory{}
	for name, st := range p.Medicines {
		if err := inv.UpdateMedicineList(name, st.Quantity, st.Price); err != nil {
			return err
		}
	}
	p.Medicines = inv
	return s.pharmacies.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return s.pharmacies.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	return s.pharmacies.List(ctx, limit, offset)
}

// CheckStock reports the units held under exactly medicine.
func (s *Service) CheckStock(ctx context.Context, pharmacyID uuid.UUID, medicine string) (int, error) {
	p, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return 0, err
	}
	return p.Medicines.CheckStock(medicine), nil
}

// UpdateMedicineList upserts one medicine under the pharmacy row lock.
func (s *Service) UpdateMedicineList(ctx context.Context, pharmacyID uuid.UUID, name string, qty int, price decimal.Decimal) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.pharmacies.GetForUpdate(ctx, pharmacyID)
		if err != nil {
			return err
		}
		if err := p.Medicines.UpdateMedicineList(name, qty, price); err != nil {
			return err
		}
		return s.pharmacies.UpdateInventory(ctx, p.ID, p.Medicines)
	})
	if err != nil {
		return err
	}

	messaging.PublishAfterCommit(ctx, s.events, messaging.EventStockUpdated, messaging.StockUpdatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventStockUpdated),
		Data: messaging.StockUpdatedData{
			PharmacyID: pharmacyID.String(),
			Medicine:   name,
			Quantity:   qty,
			Price:      price.String(),
		},
	})
	return nil
}

// DispenseResult describes a completed dispense.
type DispenseResult struct {
	PharmacyID      uuid.UUID                 `json:"pharmacy_id"`
	MedicalRecordID uuid.UUID                 `json:"medical_record_id"`
	Items           []medrecord.DispensedItem `json:"items"`
	Total           decimal.Decimal           `json:"total"`
	DispensedAt     time.Time                 `json:"dispensed_at"`
}

// Dispense hands out every item of a prescription or nothing. The pharmacy
// row and then the record row are locked for the whole transaction, so
// concurrent dispenses against the same shelf or the same prescription run
// one after the other.
func (s *Service) Dispense(ctx context.Context, pharmacyID, recordID uuid.UUID) (*DispenseResult, error) {
	ctx, span := tracer.Start(ctx, "pharmacy.Dispense")
	defer span.End()
	span.SetAttributes(
		attribute.String("pharmacy.id", pharmacyID.String()),
		attribute.String("medical_record.id", recordID.String()),
	)

	log := zerolog.Ctx(ctx).With().
		Str("pharmacy_id", pharmacyID.String()).
		Str("medical_record_id", recordID.String()).
		Logger()

	var (
		result    *DispenseResult
		patientID uuid.UUID
		pharmNo   string
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.pharmacies.GetForUpdate(ctx, pharmacyID)
		if err != nil {
			return err
		}
		rec, err := s.records.GetForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.IsDispensed() {
			return fmt.Errorf("%w: record %s", medrecord.ErrAlreadyDispensed, rec.RecordNo)
		}

		items, err := rec.Items()
		if err != nil {
			return err
		}
		dispensed, inv, err := ApplyPrescription(p.Medicines, items)
		if err != nil {
			return err
		}

		if err := s.pharmacies.UpdateInventory(ctx, p.ID, inv); err != nil {
			return err
		}
		if err := rec.MarkDispensed(dispensed); err != nil {
			return err
		}
		if err := s.records.Update(ctx, rec); err != nil {
			return err
		}

		patientID = rec.PatientID
		pharmNo = p.PharmacyNo
		result = &DispenseResult{
			PharmacyID:      p.ID,
			MedicalRecordID: rec.ID,
			Items:           dispensed,
			Total:           DispensedCost(dispensed),
			DispensedAt:     s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		reason := failureReason(err)
		s.metrics.RecordDispenseFailure(ctx, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		log.Warn().Err(err).Str("reason", reason).Msg("dispense rejected")
		return nil, err
	}

	var units int64
	lines := make([]messaging.DispensedLine, 0, len(result.Items))
	for _, it := range result.Items {
		units += int64(it.Quantity)
		lines = append(lines, messaging.DispensedLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price.String()})
	}
	s.metrics.RecordDispense(ctx, pharmNo, units)
	log.Info().Int("items", len(result.Items)).Str("total", result.Total.String()).Msg("prescription dispensed")

	messaging.PublishAfterCommit(ctx, s.events, messaging.EventPrescriptionDispensed, messaging.PrescriptionDispensedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPrescriptionDispensed),
		Data: messaging.PrescriptionDispensedData{
			PharmacyID:      pharmacyID.String(),
			MedicalRecordID: recordID.String(),
			PatientID:       patientID.String(),
			Items:           lines,
			DispensedAt:     result.DispensedAt,
		},
	})
	return result, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMedicineNotFound):
		return "medicine_not_found"
	case errors.Is(err, medrecord.ErrAlreadyDispensed):
		return "already_dispensed"
	case errors.Is(err, medrecord.ErrMalformedPrescription), errors.Is(err, medrecord.ErrEmptyPrescription):
		return "invalid_prescription"
	case errors.Is(err, ErrNotFound), errors.Is(err, medrecord.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
