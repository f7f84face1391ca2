package referent

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const refCols = `r.id, r.name, r.email, r.phone, r.zone, r.color,
	r.target_pharmacy_count, r.active, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM pharmacies p WHERE p.referent_id = r.id AND p.active) AS pharmacy_count`

func (r *repoPG) Create(ctx context.Context, ref *Referent) error {
	ref.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referents (id, name, email, phone, zone, color, target_pharmacy_count, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ref.ID, ref.Name, ref.Email, ref.Phone, ref.Zone, ref.Color, ref.TargetPharmacyCount, ref.Active,
	)
	if err != nil {
		return apperr.Persistence("insert referent", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referent, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+refCols+` FROM referents r WHERE r.id = $1`, id)
	ref, err := scanReferent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("referent %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select referent", err)
	}
	return ref, nil
}

func (r *repoPG) Update(ctx context.Context, ref *Referent) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE referents SET
			name=$2, email=$3, phone=$4, zone=$5, color=$6,
			target_pharmacy_count=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		ref.ID, ref.Name, ref.Email, ref.Phone, ref.Zone, ref.Color, ref.TargetPharmacyCount, ref.Active,
	)
	if err != nil {
		return apperr.Persistence("update referent", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referent %s not found", ref.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM referents WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete referent", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referent %s not found", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Referent, int, error) {
	where := ""
	if activeOnly {
		where = " WHERE r.active"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM referents r`+where).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count referents", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+refCols+` FROM referents r`+where+` ORDER BY r.name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("select referents", err)
	}
	defer rows.Close()

	var refs []*Referent
	for rows.Next() {
		ref, err := scanReferent(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan referent", err)
		}
		refs = append(refs, ref)
	}
	return refs, total, nil
}

func scanReferent(row pgx.Row) (*Referent, error) {
	var ref Referent
	err := row.Scan(
		&ref.ID, &ref.Name, &ref.Email, &ref.Phone, &ref.Zone, &ref.Color,
		&ref.TargetPharmacyCount, &ref.Active, &ref.CreatedAt, &ref.UpdatedAt,
		&ref.PharmacyCount,
	)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
