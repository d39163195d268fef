package medrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/hms/internal/platform/db"
)

type Service struct {
	records Repository
	tx      db.TxRunner
	now     func() time.Time
}

func NewService(records Repository, tx db.TxRunner) *Service {
	return &Service{records: records, tx: tx, now: time.Now}
}

func (s *Service) Create(ctx context.Context, r *MedicalRecord) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	if r.PrescribedTreatment != "" {
		// Catch unparseable prescriptions at entry rather than at the counter.
		if _, err := ParsePrescription(r.PrescribedTreatment, r.TreatmentQuantities); err != nil {
			return err
		}
	}
	r.RecordNo = NewRecordNo(s.now())
	r.Status = StatusPending
	r.DispensedItems = nil
	if err := s.records.Create(ctx, r); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("record_no", r.RecordNo).Str("patient_id", r.PatientID.String()).Msg("medical record created")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusDispensed {
		return nil, 0, fmt.Errorf("%w: status %q", ErrInvalidInput, f.Status)
	}
	return s.records.List(ctx, f, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, ListFilter{PatientID: &patientID}, limit, offset)
}

// ListPending returns prescriptions still waiting at the pharmacy.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, ListFilter{Status: StatusPending}, limit, offset)
}

// Update applies u under a row lock so it cannot interleave with a dispense.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u Update) (*MedicalRecord, error) {
	var out *MedicalRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		r, err := s.records.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := Apply(r, u); err != nil {
			return err
		}
		if r.PrescribedTreatment != "" {
			if _, err := ParsePrescription(r.PrescribedTreatment, r.TreatmentQuantities); err != nil {
				return err
			}
		}
		if err := s.records.Update(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}
