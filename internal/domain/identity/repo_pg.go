package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/hms/internal/platform/db"
)

// -- Patient --

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const patientCols = `p.id, p.first_name, p.last_name, p.address, p.mobile, p.email, p.symptoms,
	p.age, p.gender, p.assigned_doctor_id, COALESCE(d.first_name || ' ' || d.last_name, ''),
	p.admit_date, p.admitted, p.approved, p.created_at, p.updated_at`

const patientFrom = ` FROM patient p LEFT JOIN doctor d ON d.id = p.assigned_doctor_id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Address, &p.Mobile, &p.Email, &p.Symptoms,
		&p.Age, &p.Gender, &p.AssignedDoctorID, &p.AssignedDoctorName,
		&p.AdmitDate, &p.Admitted, &p.Approved, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, address, mobile, email, symptoms, age, gender,
			assigned_doctor_id, admit_date, admitted, approved)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Address, p.Mobile, p.Email, p.Symptoms, p.Age, p.Gender,
		p.AssignedDoctorID, p.AdmitDate, p.Admitted, p.Approved,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+patientFrom+` WHERE p.id = $1`, id))
}

func (r *patientRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+patientFrom+` WHERE p.id = $1 FOR UPDATE OF p`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, address=$4, mobile=$5, email=$6, symptoms=$7,
			age=$8, gender=$9, assigned_doctor_id=$10, admit_date=$11, admitted=$12, approved=$13,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Address, p.Mobile, p.Email, p.Symptoms,
		p.Age, p.Gender, p.AssignedDoctorID, p.AdmitDate, p.Admitted, p.Approved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) MarkDischarged(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE patient SET admitted = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, admittedOnly bool, limit, offset int) ([]*Patient, int, error) {
	clause := ""
	if admittedOnly {
		clause = " WHERE p.admitted"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient p`+clause).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+patientFrom+clause+` ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// -- Doctor --

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (id, first_name, last_name, address, mobile, department, approved)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		d.ID, d.FirstName, d.LastName, d.Address, d.Mobile, d.Department, d.Approved,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, first_name, last_name, address, mobile, department, approved, created_at, updated_at
		FROM doctor WHERE id = $1`, id,
	).Scan(&d.ID, &d.FirstName, &d.LastName, &d.Address, &d.Mobile, &d.Department, &d.Approved,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET first_name=$2, last_name=$3, address=$4, mobile=$5, department=$6,
			approved=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Address, d.Mobile, d.Department, d.Approved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Nurse --

type nurseRepoPG struct{ pool *pgxpool.Pool }

func NewNurseRepoPG(pool *pgxpool.Pool) NurseRepository { return &nurseRepoPG{pool: pool} }

func (r *nurseRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func (r *nurseRepoPG) Create(ctx context.Context, n *Nurse) error {
	n.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO nurse (id, first_name, last_name, mobile, assigned_ward, active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		n.ID, n.FirstName, n.LastName, n.Mobile, n.AssignedWard, n.Active,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *nurseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	var n Nurse
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, first_name, last_name, mobile, assigned_ward, active, created_at, updated_at
		FROM nurse WHERE id = $1`, id,
	).Scan(&n.ID, &n.FirstName, &n.LastName, &n.Mobile, &n.AssignedWard, &n.Active,
		&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nurseRepoPG) Update(ctx context.Context, n *Nurse) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE nurse SET first_name=$2, last_name=$3, mobile=$4, assigned_ward=$5, active=$6,
			updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.FirstName, n.LastName, n.Mobile, n.AssignedWard, n.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
