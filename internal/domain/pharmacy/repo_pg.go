package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const pharmacyCols = `id, pharmacy_no, pharmacist_id, available_medicines, created_at, updated_at`

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var (
		p   Pharmacy
		raw []byte
	)
	err := row.Scan(&p.ID, &p.PharmacyNo, &p.PharmacistID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Medicines = Inventory{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p.Medicines); err != nil {
			return nil, fmt.Errorf("decoding inventory of pharmacy %s: %w", p.PharmacyNo, err)
		}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	if p.Medicines == nil {
		p.Medicines = Inventory{}
	}
	raw, err := json.Marshal(p.Medicines)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pharmacy (id, pharmacy_no, pharmacist_id, available_medicines)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		p.ID, p.PharmacyNo, p.PharmacistID, raw,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.conn(ctx).QueryRow(ctx, `SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.conn(ctx).QueryRow(ctx, `SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) UpdateInventory(ctx context.Context, id uuid.UUID, inv Inventory) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE pharmacy SET available_medicines = $2, updated_at = NOW() WHERE id = $1`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy ORDER BY pharmacy_no LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
