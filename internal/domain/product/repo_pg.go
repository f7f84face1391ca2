package product

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

const prodCols = `id, name, brand, category, description, sales_pitch, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Product) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO products (id, name, brand, category, description, sales_pitch, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Brand, p.Category, p.Description, p.SalesPitch, p.Active,
	)
	if err != nil {
		return apperr.Persistence("insert product", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+prodCols+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select product", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Product) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE products SET
			name=$2, brand=$3, category=$4, description=$5, sales_pitch=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Brand, p.Category, p.Description, p.SalesPitch, p.Active,
	)
	if err != nil {
		return apperr.Persistence("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product %s not found", p.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product %s not found", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if activeOnly {
		where += " AND active"
	}
	if category != "" {
		args = append(args, category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count products", err)
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name LIMIT $%d OFFSET $%d`, prodCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, apperr.Persistence("select products", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan product", err)
		}
		products = append(products, p)
	}
	return products, total, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.SalesPitch,
		&p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
