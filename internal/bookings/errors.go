package bookings

import "github.com/wolfman30/clinic-booking/internal/apperr"

var (
	ErrMalformedTime = apperr.New(apperr.KindValidation, "malformed_time", "scheduled_at must be formatted as YYYY-MM-DD HH:MM")
	ErrPastTime      = apperr.New(apperr.KindValidation, "past_time", "cannot book a time in the past")

	ErrMissingField         = apperr.New(apperr.KindValidation, "missing_field", "required field is missing")
	ErrInvalidStatus        = apperr.New(apperr.KindValidation, "invalid_status", "status must be one of scheduled, confirmed, cancelled, completed")
	ErrInvalidTransition    = apperr.New(apperr.KindValidation, "invalid_transition", "status transition is not allowed")
	ErrBookingClosed        = apperr.New(apperr.KindValidation, "booking_closed", "cancelled or completed bookings cannot be rescheduled")
	ErrPractitionerInactive = apperr.New(apperr.KindValidation, "practitioner_inactive", "practitioner is not accepting bookings")

	ErrSlotConflict = apperr.New(apperr.KindConflict, "slot_conflict", "practitioner already has a booking at this time")
	// ErrSlotTaken is raised by storage when another active booking won the slot.
	ErrSlotTaken = apperr.New(apperr.KindConflict, "slot_taken", "slot was booked concurrently, retry")
	ErrSlotBusy  = apperr.New(apperr.KindConflict, "slot_busy", "slot is being booked by another request, retry")

	ErrNotFound = apperr.New(apperr.KindNotFound, "booking_not_found", "booking not found")
)
