package discharge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func (r *repoPG) Create(ctx context.Context, d *Details) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_discharge (id, patient_id, patient_name, assigned_doctor_name, address,
			mobile, symptoms, admit_date, release_date, day_spent, room_charge, medicine_cost,
			doctor_fee, other_charge, total, bill_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at`,
		d.ID, d.PatientID, d.PatientName, d.AssignedDoctorName, d.Address,
		d.Mobile, d.Symptoms, d.AdmitDate, d.ReleaseDate, d.DaySpent, d.RoomCharge, d.MedicineCost,
		d.DoctorFee, d.OtherCharge, d.Total, d.BillID,
	).Scan(&d.CreatedAt)
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Details, error) {
	var d Details
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, patient_name, assigned_doctor_name, address, mobile, symptoms,
			admit_date, release_date, day_spent, room_charge, medicine_cost, doctor_fee,
			other_charge, total, bill_id, created_at
		FROM patient_discharge WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT 1`, patientID,
	).Scan(&d.ID, &d.PatientID, &d.PatientName, &d.AssignedDoctorName, &d.Address, &d.Mobile, &d.Symptoms,
		&d.AdmitDate, &d.ReleaseDate, &d.DaySpent, &d.RoomCharge, &d.MedicineCost, &d.DoctorFee,
		&d.OtherCharge, &d.Total, &d.BillID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
