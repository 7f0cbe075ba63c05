package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-booking/internal/clients"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

type customerStore interface {
	GetByID(ctx context.Context, id string) (*clients.Client, error)
	SetGatewayCustomerID(ctx context.Context, id, customerID string) error
}

type paymentRefStore interface {
	SetGatewayRef(ctx context.Context, id, ref string) error
}

type api interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (string, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
}

// Registrar mirrors committed clients and payments into the gateway. Failures
// are logged and never reach the caller.
type Registrar struct {
	api         api
	clients     customerStore
	payments    paymentRefStore
	timeout     time.Duration
	synchronous bool
	logger      *logging.Logger
}

func NewRegistrar(client api, clientsRepo customerStore, paymentsRepo paymentRefStore, timeout time.Duration, logger *logging.Logger) *Registrar {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Registrar{
		api:      client,
		clients:  clientsRepo,
		payments: paymentsRepo,
		timeout:  timeout,
		logger:   logger,
	}
}

// WithSynchronous runs registrations inline instead of in a goroutine.
func (r *Registrar) WithSynchronous() *Registrar {
	r.synchronous = true
	return r
}

// RegisterCustomer creates the gateway customer for c and stores its id.
func (r *Registrar) RegisterCustomer(ctx context.Context, c *clients.Client) {
	if c == nil {
		return
	}
	snapshot := *c
	r.run(ctx, func(ctx context.Context) error {
		id, err := r.api.CreateCustomer(ctx, CustomerRequest{
			Name:          snapshot.Name,
			CPFCNPJ:       snapshot.LegalID,
			Email:         snapshot.Email,
			MobilePhone:   snapshot.Contact,
			Address:       snapshot.Street,
			AddressNumber: snapshot.Number,
			Complement:    snapshot.Complement,
			Province:      snapshot.District,
			PostalCode:    snapshot.PostalCode,
		})
		if err != nil {
			return fmt.Errorf("create customer for client %s: %w", snapshot.ID, err)
		}
		if err := r.clients.SetGatewayCustomerID(ctx, snapshot.ID, id); err != nil {
			return fmt.Errorf("store customer id for client %s: %w", snapshot.ID, err)
		}
		r.logger.Info("gateway customer registered", "client_id", snapshot.ID, "gateway_customer_id", id)
		return nil
	})
}

// RegisterPayment creates the gateway charge for p and stores its id. Clients
// without a gateway customer are skipped.
func (r *Registrar) RegisterPayment(ctx context.Context, p *payments.Payment) {
	if p == nil {
		return
	}
	snapshot := *p
	r.run(ctx, func(ctx context.Context) error {
		c, err := r.clients.GetByID(ctx, snapshot.ClientID)
		if err != nil {
			return fmt.Errorf("load client %s: %w", snapshot.ClientID, err)
		}
		if c.GatewayCustomerID == nil || *c.GatewayCustomerID == "" {
			r.logger.Warn("client has no gateway customer, skipping payment registration",
				"client_id", c.ID, "payment_id", snapshot.ID)
			return nil
		}
		ref, err := r.api.CreatePayment(ctx, PaymentRequest{
			CustomerID:  *c.GatewayCustomerID,
			PaymentID:   snapshot.ID,
			Method:      snapshot.Method,
			Value:       snapshot.Price,
			DueDate:     snapshot.DueDate,
			Description: fmt.Sprintf("Consulta %s para %s", snapshot.BookingID, c.Name),
		})
		if err != nil {
			return fmt.Errorf("create payment %s: %w", snapshot.ID, err)
		}
		if err := r.payments.SetGatewayRef(ctx, snapshot.ID, ref); err != nil {
			return fmt.Errorf("store gateway ref for payment %s: %w", snapshot.ID, err)
		}
		r.logger.Info("gateway payment registered", "payment_id", snapshot.ID, "gateway_payment_id", ref)
		return nil
	})
}

func (r *Registrar) run(ctx context.Context, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)
	work := func() {
		ctx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.logger.Error("gateway registration failed", "error", err)
		}
	}
	if r.synchronous {
		work()
		return
	}
	go work()
}
