package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method is how the client pays for a booking.
type Method string

const (
	MethodPix        Method = "pix"
	MethodBoleto     Method = "boleto"
	MethodCreditCard Method = "credit_card"
)

// ParseMethod normalizes raw and rejects unsupported methods.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(raw))); m {
	case MethodPix, MethodBoleto, MethodCreditCard:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Status is the local mirror of the gateway payment state.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// ParseStatus normalizes raw and rejects unknown statuses.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusPaid:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Payment is the charge attached to exactly one booking.
type Payment struct {
	ID         string          `json:"id"`
	BookingID  string          `json:"booking_id"`
	ClientID   string          `json:"client_id"`
	Method     Method          `json:"payment_method"`
	Price      decimal.Decimal `json:"price"`
	DueDate    time.Time       `json:"due_date"`
	Status     Status          `json:"status"`
	GatewayRef *string         `json:"gateway_payment_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UpdateRequest is the body of PATCH /payments/{paymentID}.
type UpdateRequest struct {
	Status string `json:"status"`
}
