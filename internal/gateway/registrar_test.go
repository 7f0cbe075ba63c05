package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/clients"
	"github.com/wolfman30/clinic-booking/internal/payments"
)

type fakeAPI struct {
	customerID  string
	paymentRef  string
	err         error
	customers   []CustomerRequest
	paymentReqs []PaymentRequest
}

func (f *fakeAPI) CreateCustomer(_ context.Context, req CustomerRequest) (string, error) {
	f.customers = append(f.customers, req)
	return f.customerID, f.err
}

func (f *fakeAPI) CreatePayment(_ context.Context, req PaymentRequest) (string, error) {
	f.paymentReqs = append(f.paymentReqs, req)
	return f.paymentRef, f.err
}

func seedClient(t *testing.T, repo *clients.InMemoryRepository) *clients.Client {
	t.Helper()
	c, err := repo.Create(context.Background(), &clients.CreateRequest{
		LegalID:  "52998224725",
		Name:     "Joana Silva",
		Email:    "joana@example.com",
		Contact:  "+5511999990000",
		District: "Centro",
	})
	require.NoError(t, err)
	return c
}

func TestRegistrarStoresCustomerAndPaymentRefs(t *testing.T) {
	ctx := context.Background()
	clientsRepo := clients.NewInMemoryRepository()
	paymentsRepo := payments.NewInMemoryRepository()
	api := &fakeAPI{customerID: "cus_9", paymentRef: "pay_9"}
	registrar := NewRegistrar(api, clientsRepo, paymentsRepo, time.Second, nil).WithSynchronous()

	c := seedClient(t, clientsRepo)
	registrar.RegisterCustomer(ctx, c)

	require.Len(t, api.customers, 1)
	assert.Equal(t, "52998224725", api.customers[0].CPFCNPJ)
	assert.Equal(t, "Centro", api.customers[0].Province)

	stored, err := clientsRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GatewayCustomerID)
	assert.Equal(t, "cus_9", *stored.GatewayCustomerID)

	p := &payments.Payment{
		ID:        "p-1",
		BookingID: "b-1",
		ClientID:  c.ID,
		Method:    payments.MethodPix,
		Price:     decimal.RequireFromString("200"),
		DueDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    payments.StatusPending,
	}
	require.NoError(t, paymentsRepo.Insert(ctx, p))
	registrar.RegisterPayment(ctx, p)

	require.Len(t, api.paymentReqs, 1)
	assert.Equal(t, "cus_9", api.paymentReqs[0].CustomerID)

	found, err := paymentsRepo.GetByGatewayRef(ctx, "pay_9")
	require.NoError(t, err)
	assert.Equal(t, "p-1", found.ID)
}

func TestRegistrarSkipsPaymentWithoutCustomer(t *testing.T) {
	ctx := context.Background()
	clientsRepo := clients.NewInMemoryRepository()
	paymentsRepo := payments.NewInMemoryRepository()
	api := &fakeAPI{paymentRef: "pay_9"}
	registrar := NewRegistrar(api, clientsRepo, paymentsRepo, time.Second, nil).WithSynchronous()

	c := seedClient(t, clientsRepo)
	p := &payments.Payment{ID: "p-1", ClientID: c.ID, Method: payments.MethodBoleto, Status: payments.StatusPending}
	require.NoError(t, paymentsRepo.Insert(ctx, p))

	registrar.RegisterPayment(ctx, p)
	assert.Empty(t, api.paymentReqs)

	stored, err := paymentsRepo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, stored.GatewayRef)
}

func TestRegistrarSwallowsUpstreamFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clientsRepo := clients.NewInMemoryRepository()
	api := &fakeAPI{err: &UpstreamError{Op: "create_customer", StatusCode: 500}}
	registrar := NewRegistrar(api, clientsRepo, payments.NewInMemoryRepository(), time.Second, nil).WithSynchronous()

	c := seedClient(t, clientsRepo)
	cancel()
	registrar.RegisterCustomer(ctx, c)

	require.Len(t, api.customers, 1)
	stored, err := clientsRepo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GatewayCustomerID)
}
