package ward

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const roomCols = `id, room_no, type, ward, available, assigned_patient_id, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(&rm.ID, &rm.RoomNo, &rm.Type, &rm.Ward, &rm.Available, &rm.AssignedPatientID,
		&rm.CreatedAt, &rm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *repoPG) Create(ctx context.Context, rm *Room) error {
	rm.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ward_room (id, room_no, type, ward, available, assigned_patient_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		rm.ID, rm.RoomNo, rm.Type, rm.Ward, rm.Available, rm.AssignedPatientID,
	).Scan(&rm.CreatedAt, &rm.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	return scanRoom(r.conn(ctx).QueryRow(ctx, `SELECT `+roomCols+` FROM ward_room WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Room, error) {
	return scanRoom(r.conn(ctx).QueryRow(ctx, `SELECT `+roomCols+` FROM ward_room WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) FindByPatientForUpdate(ctx context.Context, patientID uuid.UUID) (*Room, error) {
	return scanRoom(r.conn(ctx).QueryRow(ctx,
		`SELECT `+roomCols+` FROM ward_room WHERE assigned_patient_id = $1 FOR UPDATE`, patientID))
}

func (r *repoPG) Update(ctx context.Context, rm *Room) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward_room SET available=$2, assigned_patient_id=$3, updated_at=NOW()
		WHERE id = $1`,
		rm.ID, rm.Available, rm.AssignedPatientID)
	if err != nil {
		var pgErr *pgconn.PgError
		// unique_violation on assigned_patient_id
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrPatientHasRoom, pgErr.Detail)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (f ListFilter) where() (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if f.Ward != "" {
		args = append(args, f.Ward)
		where = append(where, fmt.Sprintf("ward = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.AvailableOnly {
		where = append(where, "available")
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Room, int, error) {
	clause, args := f.where()

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ward_room`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM ward_room%s ORDER BY ward, room_no LIMIT $%d OFFSET $%d`,
			roomCols, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rm)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Occupancy(ctx context.Context, f ListFilter) (Occupancy, error) {
	clause, args := f.where()
	var o Occupancy
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE available) FROM ward_room`+clause, args...,
	).Scan(&o.Total, &o.Available)
	o.Occupied = o.Total - o.Available
	return o, err
}
