package practitioners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/wolfman30/clinic-booking/internal/database"
)

// PostgresRepository stores practitioners in the relational database.
type PostgresRepository struct {
	db database.DBTX
}

// NewPostgresRepository initializes a repo backed by a pgx pool or transaction.
func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	if db == nil {
		panic("practitioners: db required")
	}
	return &PostgresRepository{db: db}
}

const practitionerColumns = `id, name, specialty, address, contact, consultation_price::text, active, created_at`

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Practitioner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	query := `
		INSERT INTO practitioners (id, name, specialty, address, contact, consultation_price, active)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, TRUE)
		RETURNING ` + practitionerColumns
	p, err := scanPractitioner(r.db.QueryRow(ctx, query,
		id, req.Name, req.Specialty, req.Address, req.Contact, priceArg(req.Price),
	))
	if err != nil {
		return nil, fmt.Errorf("practitioners: insert failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE id = $1`
	p, err := scanPractitioner(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("practitioners: select failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, includeInactive bool) ([]*Practitioner, error) {
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE active OR $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("practitioners: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, fmt.Errorf("practitioners: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, p *Practitioner) error {
	query := `
		UPDATE practitioners
		SET name = $2, specialty = $3, address = $4, contact = $5,
		    consultation_price = $6::text::numeric, active = $7
		WHERE id = $1
	`
	ct, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Specialty, p.Address, p.Contact, priceArg(p.Price), p.Active)
	if err != nil {
		return fmt.Errorf("practitioners: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	var price pgtype.Text
	if err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Address, &p.Contact, &price, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	if price.Valid {
		d, err := decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price.String, err)
		}
		p.Price = decimal.NewNullDecimal(d)
	}
	return &p, nil
}

func priceArg(price decimal.NullDecimal) any {
	if !price.Valid {
		return nil
	}
	return price.Decimal.String()
}
