package practitioners

import "github.com/wolfman30/clinic-booking/internal/apperr"

var (
	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = apperr.New(apperr.KindValidation, "invalid_name", "name is required")

	// ErrInvalidSpecialty is returned when the specialty is missing
	ErrInvalidSpecialty = apperr.New(apperr.KindValidation, "invalid_specialty", "specialty is required")

	// ErrInvalidPrice is returned for negative consultation prices
	ErrInvalidPrice = apperr.New(apperr.KindValidation, "invalid_price", "consultation price must not be negative")

	// ErrNotFound is returned when a practitioner does not exist
	ErrNotFound = apperr.New(apperr.KindNotFound, "practitioner_not_found", "practitioner not found")

	// ErrHasFutureBookings blocks deactivation while active future bookings exist
	ErrHasFutureBookings = apperr.New(apperr.KindValidation, "practitioner_has_future_bookings",
		"practitioner cannot be deactivated while future bookings are scheduled")
)
