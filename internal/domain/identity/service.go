package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/hms/internal/platform/db"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	nurses   NurseRepository
	tx       db.TxRunner
	now      func() time.Time
}

func NewService(patients PatientRepository, doctors DoctorRepository, nurses NurseRepository, tx db.TxRunner) *Service {
	return &Service{patients: patients, doctors: doctors, nurses: nurses, tx: tx, now: time.Now}
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireName(first, last string) error {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(last) == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}
	return nil
}

// -- Patient --

// CreatePatient registers and admits a patient. Admission starts today
// unless an admit date is given.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := requireName(p.FirstName, p.LastName); err != nil {
		return err
	}
	if strings.TrimSpace(p.Mobile) == "" {
		return fmt.Errorf("%w: mobile is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Symptoms) == "" {
		return fmt.Errorf("%w: symptoms are required", ErrInvalidInput)
	}
	if p.Age != nil && *p.Age < 0 {
		return fmt.Errorf("%w: age %d", ErrInvalidInput, *p.Age)
	}
	if p.Gender != nil {
		switch *p.Gender {
		case "Male", "Female", "Other":
		default:
			return fmt.Errorf("%w: gender %q", ErrInvalidInput, *p.Gender)
		}
	}
	if p.AssignedDoctorID != nil {
		d, err := s.doctors.GetByID(ctx, *p.AssignedDoctorID)
		if err != nil {
			return fmt.Errorf("assigned doctor: %w", err)
		}
		p.AssignedDoctorName = d.Name()
	}
	if p.AdmitDate.IsZero() {
		p.AdmitDate = today(s.now())
	}
	p.Admitted = true
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("patient_id", p.ID.String()).Msg("patient admitted")
	return nil
}

// Admit readmits a discharged patient from today.
func (s *Service) Admit(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var out *Patient
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Admitted {
			out = p
			return nil
		}
		p.Admitted = true
		p.AdmitDate = today(s.now())
		if err := s.patients.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, admittedOnly bool, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, admittedOnly, limit, offset)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := requireName(d.FirstName, d.LastName); err != nil {
		return err
	}
	if d.Department == "" {
		d.Department = Departments[0]
	}
	if !validDepartment(d.Department) {
		return fmt.Errorf("%w: department %q", ErrInvalidInput, d.Department)
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// -- Nurse --

func (s *Service) CreateNurse(ctx context.Context, n *Nurse) error {
	if err := requireName(n.FirstName, n.LastName); err != nil {
		return err
	}
	if strings.TrimSpace(n.Mobile) == "" {
		return fmt.Errorf("%w: mobile is required", ErrInvalidInput)
	}
	n.Active = true
	return s.nurses.Create(ctx, n)
}

func (s *Service) GetNurse(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	return s.nurses.GetByID(ctx, id)
}

// -- Entity --

func (s *Service) entity(ctx context.Context, kind Kind, id uuid.UUID) (Entity, error) {
	switch kind {
	case KindPatient:
		return s.patients.GetByID(ctx, id)
	case KindDoctor:
		return s.doctors.GetByID(ctx, id)
	case KindNurse:
		return s.nurses.GetByID(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (s *Service) save(ctx context.Context, e Entity) error {
	switch v := e.(type) {
	case *Patient:
		return s.patients.Update(ctx, v)
	case *Doctor:
		return s.doctors.Update(ctx, v)
	case *Nurse:
		return s.nurses.Update(ctx, v)
	}
	return fmt.Errorf("%w: %T", ErrUnknownKind, e)
}

func (s *Service) Info(ctx context.Context, kind Kind, id uuid.UUID) (map[string]interface{}, error) {
	e, err := s.entity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return e.Info(), nil
}

// ToggleStatus flips the approval (patients, doctors) or active (nurses) flag.
func (s *Service) ToggleStatus(ctx context.Context, kind Kind, id uuid.UUID) (Entity, error) {
	var out Entity
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.entity(ctx, kind, id)
		if err != nil {
			return err
		}
		e.ToggleStatus()
		if err := s.save(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("kind", string(kind)).Str("id", id.String()).Msg("status toggled")
	return out, nil
}
