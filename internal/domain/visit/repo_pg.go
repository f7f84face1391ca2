package visit

import (
	"context"
	"errors"
	"fmt"

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

const visitCols = `v.id, v.pharmacy_id, p.name, v.visit_date, v.duration_minutes,
	v.objective, v.notes, v.quality_score, v.latitude, v.longitude, v.completed,
	v.created_by, v.created_at`

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visits (
			id, pharmacy_id, visit_date, duration_minutes, objective, notes,
			quality_score, latitude, longitude, completed, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.PharmacyID, v.VisitDate, v.DurationMinutes, v.Objective, v.Notes,
		v.QualityScore, v.Latitude, v.Longitude, v.Completed, v.CreatedBy,
	)
	if err != nil {
		return apperr.Persistence("insert visit", err)
	}
	return nil
}

func (r *repoPG) SetProducts(ctx context.Context, visitID uuid.UUID, products []*Product) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM visit_products WHERE visit_id = $1`, visitID); err != nil {
		return apperr.Persistence("clear visit products", err)
	}
	for _, p := range products {
		_, err := q.Exec(ctx, `
			INSERT INTO visit_products (visit_id, product_id, trained_agents_count)
			VALUES ($1,$2,$3)`,
			visitID, p.ProductID, p.TrainedAgentsCount)
		if err != nil {
			return apperr.Persistence("insert visit product", err)
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+visitCols+`
		FROM visits v
		JOIN pharmacies p ON p.id = v.pharmacy_id
		WHERE v.id = $1`, id)
	v, err := scanVisit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visit %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select visit", err)
	}
	if v.Products, err = r.products(ctx, v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if f.PharmacyID != nil {
		args = append(args, *f.PharmacyID)
		where += fmt.Sprintf(" AND v.pharmacy_id = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND v.visit_date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND v.visit_date <= $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visits v`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count visits", err)
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM visits v JOIN pharmacies p ON p.id = v.pharmacy_id%s
			ORDER BY v.visit_date DESC LIMIT $%d OFFSET $%d`, visitCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, apperr.Persistence("select visits", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan visit", err)
		}
		visits = append(visits, v)
	}
	return visits, total, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete visit", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("visit %s not found", id)
	}
	return nil
}

func (r *repoPG) products(ctx context.Context, visitID uuid.UUID) ([]*Product, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT vp.product_id, pr.name, vp.trained_agents_count
		FROM visit_products vp
		JOIN products pr ON pr.id = vp.product_id
		WHERE vp.visit_id = $1
		ORDER BY pr.name`, visitID)
	if err != nil {
		return nil, apperr.Persistence("select visit products", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.TrainedAgentsCount); err != nil {
			return nil, apperr.Persistence("scan visit product", err)
		}
		products = append(products, &p)
	}
	return products, nil
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(
		&v.ID, &v.PharmacyID, &v.PharmacyName, &v.VisitDate, &v.DurationMinutes,
		&v.Objective, &v.Notes, &v.QualityScore, &v.Latitude, &v.Longitude,
		&v.Completed, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
