package medrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const recordCols = `id, record_no, patient_id, doctor_id, diagnosis, prescribed_treatment,
	treatment_quantities, test_results, dispensed_items, status, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var (
		m         MedicalRecord
		tests     []byte
		dispensed []byte
	)
	err := row.Scan(&m.ID, &m.RecordNo, &m.PatientID, &m.DoctorID, &m.Diagnosis, &m.PrescribedTreatment,
		&m.TreatmentQuantities, &tests, &dispensed, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(tests) > 0 {
		m.TestResults = json.RawMessage(tests)
	}
	if len(dispensed) > 0 {
		if err := json.Unmarshal(dispensed, &m.DispensedItems); err != nil {
			return nil, fmt.Errorf("decoding dispensed items of %s: %w", m.RecordNo, err)
		}
	}
	return &m, nil
}

func testResultsArg(m *MedicalRecord) []byte {
	if len(m.TestResults) == 0 {
		return []byte("[]")
	}
	return m.TestResults
}

func dispensedArg(m *MedicalRecord) ([]byte, error) {
	if m.DispensedItems == nil {
		return nil, nil
	}
	return json.Marshal(m.DispensedItems)
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	if m.Status == "" {
		m.Status = StatusPending
	}
	dispensed, err := dispensedArg(m)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (id, record_no, patient_id, doctor_id, diagnosis,
			prescribed_treatment, treatment_quantities, test_results, dispensed_items, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		m.ID, m.RecordNo, m.PatientID, m.DoctorID, m.Diagnosis,
		m.PrescribedTreatment, m.TreatmentQuantities, testResultsArg(m), dispensed, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, m *MedicalRecord) error {
	dispensed, err := dispensedArg(m)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET diagnosis=$2, prescribed_treatment=$3, treatment_quantities=$4,
			test_results=$5, dispensed_items=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Diagnosis, m.PrescribedTreatment, m.TreatmentQuantities,
		testResultsArg(m), dispensed, m.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM medical_record%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			recordCols, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
