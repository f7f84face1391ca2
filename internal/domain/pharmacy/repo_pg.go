package pharmacy

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

const phCols = `id, name, type, address, city, postal_code, region, latitude, longitude,
	phone, email, referent_id, active, notes, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacies (
			id, name, type, address, city, postal_code, region, latitude, longitude,
			phone, email, referent_id, active, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.Name, p.Type, p.Address, p.City, p.PostalCode, p.Region, p.Latitude, p.Longitude,
		p.Phone, p.Email, p.ReferentID, p.Active, p.Notes,
	)
	if err != nil {
		return apperr.Persistence("insert pharmacy", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+phCols+` FROM pharmacies WHERE id = $1`, id)
	p, err := scanPharmacy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("pharmacy %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select pharmacy", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Pharmacy) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacies SET
			name=$2, type=$3, address=$4, city=$5, postal_code=$6, region=$7,
			latitude=$8, longitude=$9, phone=$10, email=$11, referent_id=$12,
			active=$13, notes=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Type, p.Address, p.City, p.PostalCode, p.Region,
		p.Latitude, p.Longitude, p.Phone, p.Email, p.ReferentID, p.Active, p.Notes,
	)
	if err != nil {
		return apperr.Persistence("update pharmacy", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("pharmacy %s not found", p.ID)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if f.ActiveOnly {
		where += " AND active"
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (name ILIKE $%d OR city ILIKE $%d OR address ILIKE $%d)", n, n, n)
	}
	if f.Region != "" {
		args = append(args, f.Region)
		where += fmt.Sprintf(" AND region = $%d", len(args))
	}
	if f.ReferentID != nil {
		args = append(args, *f.ReferentID)
		where += fmt.Sprintf(" AND referent_id = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacies`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count pharmacies", err)
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM pharmacies%s ORDER BY name LIMIT $%d OFFSET $%d`, phCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, apperr.Persistence("select pharmacies", err)
	}
	defer rows.Close()

	var pharmacies []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan pharmacy", err)
		}
		pharmacies = append(pharmacies, p)
	}
	return pharmacies, total, nil
}

func (r *repoPG) ListMapPoints(ctx context.Context) ([]*MapPoint, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, city, latitude, longitude
		FROM pharmacies
		WHERE active AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY name`)
	if err != nil {
		return nil, apperr.Persistence("select map points", err)
	}
	defer rows.Close()

	var points []*MapPoint
	for rows.Next() {
		var mp MapPoint
		if err := rows.Scan(&mp.ID, &mp.Name, &mp.City, &mp.Latitude, &mp.Longitude); err != nil {
			return nil, apperr.Persistence("scan map point", err)
		}
		points = append(points, &mp)
	}
	return points, nil
}

func (r *repoPG) AddContact(ctx context.Context, c *Contact) error {
	c.ID = uuid.New()
	// A pharmacy keeps at most one primary contact.
	if c.IsPrimary {
		if _, err := r.conn(ctx).Exec(ctx,
			`UPDATE pharmacy_contacts SET is_primary = FALSE WHERE pharmacy_id = $1`, c.PharmacyID); err != nil {
			return apperr.Persistence("demote primary contact", err)
		}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_contacts (id, pharmacy_id, name, role, phone, email, is_primary)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.PharmacyID, c.Name, c.Role, c.Phone, c.Email, c.IsPrimary,
	)
	if err != nil {
		return apperr.Persistence("insert contact", err)
	}
	return nil
}

func (r *repoPG) ListContacts(ctx context.Context, pharmacyID uuid.UUID) ([]*Contact, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, pharmacy_id, name, role, phone, email, is_primary, created_at
		FROM pharmacy_contacts WHERE pharmacy_id = $1
		ORDER BY is_primary DESC, name`, pharmacyID)
	if err != nil {
		return nil, apperr.Persistence("select contacts", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.PharmacyID, &c.Name, &c.Role, &c.Phone, &c.Email, &c.IsPrimary, &c.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan contact", err)
		}
		contacts = append(contacts, &c)
	}
	return contacts, nil
}

func (r *repoPG) RemoveContact(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_contacts WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("contact %s not found", id)
	}
	return nil
}

func (r *repoPG) AddAgent(ctx context.Context, a *Agent) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_agents (id, pharmacy_id, name, position)
		VALUES ($1,$2,$3,$4)`,
		a.ID, a.PharmacyID, a.Name, a.Position,
	)
	if err != nil {
		return apperr.Persistence("insert agent", err)
	}
	return nil
}

func (r *repoPG) ListAgents(ctx context.Context, pharmacyID uuid.UUID) ([]*Agent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, pharmacy_id, name, position, created_at
		FROM pharmacy_agents WHERE pharmacy_id = $1 ORDER BY name`, pharmacyID)
	if err != nil {
		return nil, apperr.Persistence("select agents", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.PharmacyID, &a.Name, &a.Position, &a.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan agent", err)
		}
		agents = append(agents, &a)
	}
	return agents, nil
}

func (r *repoPG) RemoveAgent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_agents WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete agent", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("agent %s not found", id)
	}
	return nil
}

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Address, &p.City, &p.PostalCode, &p.Region,
		&p.Latitude, &p.Longitude, &p.Phone, &p.Email, &p.ReferentID,
		&p.Active, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
