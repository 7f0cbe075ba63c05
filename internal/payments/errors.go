package payments

import "github.com/wolfman30/clinic-booking/internal/apperr"

var (
	ErrInvalidPaymentMethod = apperr.New(apperr.KindValidation, "invalid_payment_method", "payment method must be one of pix, boleto, credit_card")
	ErrInvalidPrice         = apperr.New(apperr.KindValidation, "invalid_price", "practitioner has no valid consultation price")
	ErrInvalidStatus        = apperr.New(apperr.KindValidation, "invalid_payment_status", "payment status must be pending or paid")
	ErrMalformedPayload     = apperr.New(apperr.KindValidation, "malformed_payload", "payment.id is required")

	// ErrPaymentExists is returned when the booking already has a payment
	ErrPaymentExists = apperr.New(apperr.KindConflict, "payment_already_exists", "booking already has a payment")

	// ErrPaymentNotFound is returned when a payment is not found
	ErrPaymentNotFound = apperr.New(apperr.KindNotFound, "payment_not_found", "payment not found")
)
