package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carepoint/hms/internal/platform/db"
	"github.com/carepoint/hms/internal/platform/messaging"
	"github.com/carepoint/hms/internal/platform/telemetry"
)

// Service owns bill arithmetic and persistence. It is constructed once and
// passed to the callers that need it.
type Service struct {
	bills   Repository
	tx      db.TxRunner
	events  messaging.Publisher
	metrics *telemetry.Metrics
	now     func() time.Time
}

func NewService(bills Repository, tx db.TxRunner) *Service {
	return &Service{bills: bills, tx: tx, events: messaging.NopPublisher{}, now: time.Now}
}

func (s *Service) SetPublisher(p messaging.Publisher) { s.events = p }

func (s *Service) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

func (s *Service) CreateBill(ctx context.Context, b *Bill) error {
	if b.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	treatment, medicine := b.TreatmentCost, b.MedicineCost
	*b = Bill{
		BillNo:          NewBillNo(s.now()),
		PatientID:       b.PatientID,
		MedicalRecordID: b.MedicalRecordID,
		PaymentStatus:   StatusPending,
	}
	if err := b.Accumulate(treatment, medicine); err != nil {
		return err
	}
	// A patient carries at most one open bill; discharge folds into it.
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		open, err := s.bills.FindOpenForUpdate(ctx, b.PatientID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrOpenBillExists, open.BillNo)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return s.bills.Create(ctx, b)
	})
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	return s.bills.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Bill, error) {
	return s.bills.LatestByPatient(ctx, patientID)
}

// Accumulate adds charges to an open bill.
func (s *Service) Accumulate(ctx context.Context, id uuid.UUID, treatment, medicine decimal.Decimal) (*Bill, error) {
	var out *Bill
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := b.Accumulate(treatment, medicine); err != nil {
			return err
		}
		if err := s.bills.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// ApplyPayment records a payment against the bill's total and reports
// whether it is now paid in full.
func (s *Service) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Bill, bool, error) {
	if amount.IsNegative() {
		return nil, false, fmt.Errorf("%w: payment %s", ErrNegativeAmount, amount)
	}

	var (
		out  *Bill
		paid bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		paid = b.ApplyPayment(amount)
		if err := s.bills.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.metrics.RecordPayment(ctx, string(out.PaymentStatus))
	zerolog.Ctx(ctx).Info().
		Str("bill_no", out.BillNo).
		Str("amount", amount.String()).
		Str("status", string(out.PaymentStatus)).
		Msg("payment applied")

	messaging.PublishAfterCommit(ctx, s.events, messaging.EventPaymentApplied, messaging.PaymentAppliedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPaymentApplied),
		Data: messaging.PaymentAppliedData{
			BillID:        out.ID.String(),
			PatientID:     out.PatientID.String(),
			Amount:        amount.String(),
			PaymentStatus: string(out.PaymentStatus),
		},
	})
	return out, paid, nil
}

// FindOrCreateOpen returns the patient's open bill, locked, creating an empty
// one when there is none. Call it inside a transaction.
func (s *Service) FindOrCreateOpen(ctx context.Context, patientID uuid.UUID) (*Bill, error) {
	b, err := s.bills.FindOpenForUpdate(ctx, patientID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	b = &Bill{
		BillNo:        NewBillNo(s.now()),
		PatientID:     patientID,
		PaymentStatus: StatusPending,
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Save persists a bill changed by the caller.
func (s *Service) Save(ctx context.Context, b *Bill) error {
	return s.bills.Update(ctx, b)
}
