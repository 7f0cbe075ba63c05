package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO clients").
		WithArgs(pgxmock.AnyArg(), "11144477735", "Maria", "maria@example.com", "", "", "", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	c, err := repo.Create(context.Background(), &CreateRequest{LegalID: "111.444.777-35", Name: "Maria", Email: "Maria@Example.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !c.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at from database, got %v", c.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryCreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectQuery("INSERT INTO clients").
		WithArgs(pgxmock.AnyArg(), "11144477735", "Maria", "maria@example.com", "", "", "", "", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "clients_legal_id_key"})

	_, err = repo.Create(context.Background(), &CreateRequest{LegalID: "11144477735", Name: "Maria", Email: "maria@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositorySetGatewayCustomerIDMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec("UPDATE clients SET gateway_customer_id").
		WithArgs("missing", "cus_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetGatewayCustomerID(context.Background(), "missing", "cus_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
