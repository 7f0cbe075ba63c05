package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wolfman30/clinic-booking/internal/database"
)

// PostgresRepository stores clients in the relational database.
type PostgresRepository struct {
	db database.DBTX
}

// NewPostgresRepository initializes a repo backed by a pgx pool or transaction.
func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	if db == nil {
		panic("clients: db required")
	}
	return &PostgresRepository{db: db}
}

const clientColumns = `id, legal_id, name, email, contact, street, number, complement, district, postal_code, gateway_customer_id, created_at`

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c := req.toClient(uuid.New().String(), time.Time{})
	query := `
		INSERT INTO clients (id, legal_id, name, email, contact, street, number, complement, district, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		c.ID, c.LegalID, c.Name, c.Email, c.Contact, c.Street, c.Number, c.Complement, c.District, c.PostalCode,
	).Scan(&c.CreatedAt); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("clients: insert failed: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: select failed: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("clients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("clients: scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetGatewayCustomerID(ctx context.Context, id, customerID string) error {
	ct, err := r.db.Exec(ctx, `UPDATE clients SET gateway_customer_id = $2 WHERE id = $1`, id, customerID)
	if err != nil {
		return fmt.Errorf("clients: set gateway customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var (
		c          Client
		customerID pgtype.Text
	)
	if err := row.Scan(
		&c.ID,
		&c.LegalID,
		&c.Name,
		&c.Email,
		&c.Contact,
		&c.Street,
		&c.Number,
		&c.Complement,
		&c.District,
		&c.PostalCode,
		&customerID,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if customerID.Valid {
		c.GatewayCustomerID = &customerID.String
	}
	return &c, nil
}
