package events

import "time"

// Booking event types written to the outbox.
const (
	TypeBookingCreated   = "booking.created.v1"
	TypeBookingConfirmed = "booking.confirmed.v1"
	TypeBookingCancelled = "booking.cancelled.v1"
)

type BookingCreatedV1 struct {
	EventID        string    `json:"event_id"`
	BookingID      string    `json:"booking_id"`
	PractitionerID string    `json:"practitioner_id"`
	ClientID       string    `json:"client_id"`
	PaymentID      string    `json:"payment_id"`
	PaymentMethod  string    `json:"payment_method"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Superseded     string    `json:"superseded_booking_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type BookingConfirmedV1 struct {
	EventID        string    `json:"event_id"`
	BookingID      string    `json:"booking_id"`
	PractitionerID string    `json:"practitioner_id"`
	ClientID       string    `json:"client_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	// Source is "payment" for gateway or admin payment confirmation, "status_update" otherwise.
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BookingCancelledV1 struct {
	EventID        string    `json:"event_id"`
	BookingID      string    `json:"booking_id"`
	PractitionerID string    `json:"practitioner_id"`
	ClientID       string    `json:"client_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Reason         string    `json:"reason"`
	ReplacedBy     string    `json:"replaced_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
