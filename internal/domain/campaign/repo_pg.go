package campaign

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

const campCols = `c.id, c.name, c.description, c.start_date, c.end_date, c.status,
	c.created_by, c.created_at, c.updated_at,
	COALESCE((SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE pc.status = 'done') / NULLIF(COUNT(*), 0), 1)
		FROM pharmacy_campaigns pc WHERE pc.campaign_id = c.id), 0) AS progress`

func (r *repoPG) Create(ctx context.Context, c *Campaign) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO campaigns (id, name, description, start_date, end_date, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Name, c.Description, c.StartDate, c.EndDate, c.Status, c.CreatedBy,
	)
	if err != nil {
		return apperr.Persistence("insert campaign", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+campCols+` FROM campaigns c WHERE c.id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("campaign %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select campaign", err)
	}

	c.ProductIDs, err = r.productIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repoPG) Update(ctx context.Context, c *Campaign) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE campaigns SET
			name=$2, description=$3, start_date=$4, end_date=$5, status=$6, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.StartDate, c.EndDate, c.Status,
	)
	if err != nil {
		return apperr.Persistence("update campaign", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign %s not found", c.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete campaign", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign %s not found", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Campaign, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where = " WHERE c.status = $1"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM campaigns c`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count campaigns", err)
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM campaigns c%s ORDER BY c.start_date DESC LIMIT $%d OFFSET $%d`,
			campCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, apperr.Persistence("select campaigns", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan campaign", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, nil
}

func (r *repoPG) SetProducts(ctx context.Context, campaignID uuid.UUID, productIDs []uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM campaign_products WHERE campaign_id = $1`, campaignID); err != nil {
		return apperr.Persistence("clear campaign products", err)
	}
	for _, pid := range productIDs {
		if _, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO campaign_products (campaign_id, product_id) VALUES ($1,$2)`,
			campaignID, pid); err != nil {
			return apperr.Persistence("insert campaign product", err)
		}
	}
	return nil
}

func (r *repoPG) EnrollPharmacies(ctx context.Context, campaignID uuid.UUID, pharmacyIDs []uuid.UUID) error {
	for _, phID := range pharmacyIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO pharmacy_campaigns (id, pharmacy_id, campaign_id, status, enrollment_date)
			VALUES ($1,$2,$3,'pending',NOW())`,
			uuid.New(), phID, campaignID); err != nil {
			return apperr.Persistence("enroll pharmacy", err)
		}
	}
	return nil
}

func (r *repoPG) productIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT product_id FROM campaign_products WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, apperr.Persistence("select campaign products", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Persistence("scan campaign product", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func scanCampaign(row pgx.Row) (*Campaign, error) {
	var c Campaign
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Status,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.Progress,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
