package discharge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/carepoint/hms/internal/domain/billing"
	"github.com/carepoint/hms/internal/domain/ward"
	"github.com/carepoint/hms/internal/platform/db"
	"github.com/carepoint/hms/internal/platform/messaging"
	"github.com/carepoint/hms/internal/platform/telemetry"
)

var tracer = otel.Tracer("github.com/carepoint/hms/internal/domain/discharge")

type Service struct {
	discharges Repository
	patients   PatientStore
	bills      *billing.Service
	rooms      *ward.Service
	tx         db.TxRunner
	events     messaging.Publisher
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewService(discharges Repository, patients PatientStore, bills *billing.Service, rooms *ward.Service, tx db.TxRunner) *Service {
	return &Service{
		discharges: discharges,
		patients:   patients,
		bills:      bills,
		rooms:      rooms,
		tx:         tx,
		events:     messaging.NopPublisher{},
		now:        time.Now,
	}
}

func (s *Service) SetPublisher(p messaging.Publisher) { s.events = p }

func (s *Service) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

type Request struct {
	PatientID        uuid.UUID
	RoomChargePerDay decimal.Decimal
	DoctorFee        decimal.Decimal
	OtherCharge      decimal.Decimal
	MedicineCost     decimal.Decimal
}

func (r Request) validate() error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	for name, v := range map[string]decimal.Decimal{
		"room_charge_per_day": r.RoomChargePerDay,
		"doctor_fee":          r.DoctorFee,
		"other_charge":        r.OtherCharge,
		"medicine_cost":       r.MedicineCost,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s %s", ErrNegativeAmount, name, v)
		}
	}
	return nil
}

type Result struct {
	Details     *Details      `json:"discharge"`
	Calculation Calculation   `json:"calculation"`
	Bill        *billing.Bill `json:"bill"`
	RoomNo      string        `json:"room_no"`
}

// Discharge prices the stay, folds it into the patient's open bill, closes
// that bill, frees the room and records the snapshot. All of it commits or
// none of it does.
func (s *Service) Discharge(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "discharge.Discharge")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", req.PatientID.String()))

	log := zerolog.Ctx(ctx).With().Str("patient_id", req.PatientID.String()).Logger()

	if err := req.validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetForUpdate(ctx, req.PatientID)
		if err != nil {
			return err
		}
		if !p.Admitted {
			return fmt.Errorf("%w: patient %s", ErrDuplicateDischarge, p.ID)
		}

		now := s.now().UTC()
		calc := Calculate(p.AdmitDate, now, req.RoomChargePerDay, req.DoctorFee, req.OtherCharge, req.MedicineCost)

		bill, err := s.bills.FindOrCreateOpen(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := bill.Accumulate(calc.Treatment, calc.MedicineCost); err != nil {
			return err
		}
		if err := bill.SetRoomCharge(calc.RoomCharge); err != nil {
			return err
		}
		if err := bill.Finalize(now); err != nil {
			return err
		}
		if err := s.bills.Save(ctx, bill); err != nil {
			return err
		}

		details := NewDetails(p, calc, now, bill.ID)
		if err := s.discharges.Create(ctx, details); err != nil {
			return err
		}

		roomNo := notAvailable
		room, err := s.rooms.ReleaseForPatient(ctx, p.ID)
		if err != nil {
			return err
		}
		if room != nil {
			roomNo = room.RoomNo
		}

		if err := s.patients.MarkDischarged(ctx, p.ID); err != nil {
			return err
		}

		result = &Result{Details: details, Calculation: calc, Bill: bill, RoomNo: roomNo}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discharge failed")
		log.Warn().Err(err).Msg("discharge rejected")
		return nil, err
	}

	total, _ := result.Calculation.Total.Float64()
	s.metrics.RecordDischarge(ctx, total)
	log.Info().
		Int("day_spent", result.Details.DaySpent).
		Str("total", result.Calculation.Total.String()).
		Str("bill_no", result.Bill.BillNo).
		Msg("patient discharged")

	messaging.PublishAfterCommit(ctx, s.events, messaging.EventPatientDischarged, messaging.PatientDischargedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDischarged),
		Data: messaging.PatientDischargedData{
			PatientID:    req.PatientID.String(),
			BillID:       result.Bill.ID.String(),
			DaySpent:     result.Details.DaySpent,
			Total:        result.Bill.TotalAmount.String(),
			DischargedAt: result.Details.ReleaseDate,
		},
	})
	return result, nil
}

// Invoice is the data an external renderer turns into the final bill.
type Invoice struct {
	Discharge   *Details               `json:"discharge"`
	Bill        map[string]interface{} `json:"bill"`
	GeneratedOn time.Time              `json:"generated_on"`
}

// Invoice pairs the latest discharge snapshot with the bill that discharge
// finalized, not whatever bill the patient opened afterwards.
func (s *Service) Invoice(ctx context.Context, patientID uuid.UUID) (*Invoice, error) {
	d, err := s.discharges.LatestByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	b, err := s.bills.GetBill(ctx, d.BillID)
	if err != nil {
		return nil, err
	}
	return &Invoice{Discharge: d, Bill: b.Details(), GeneratedOn: s.now().UTC()}, nil
}
