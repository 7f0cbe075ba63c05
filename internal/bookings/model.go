package bookings

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/payments"
)

// Status is the lifecycle label of a booking. It is independent of Active.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus normalizes raw and rejects unknown statuses.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no normal transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking is an appointment between a client and a practitioner at one instant.
type Booking struct {
	ID             string    `json:"id"`
	PractitionerID string    `json:"practitioner_id"`
	ClientID       string    `json:"client_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         Status    `json:"status"`
	// Active bookings count for conflict detection and practitioner listings.
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReplaceFlag accepts a JSON bool or a string that is truthy only when it
// equals "true" without regard to case.
type ReplaceFlag bool

func (f *ReplaceFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = ReplaceFlag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ReplaceFlag(strings.EqualFold(strings.TrimSpace(s), "true"))
	return nil
}

// CreateRequest is the body of POST /bookings.
type CreateRequest struct {
	PractitionerID string      `json:"practitioner_id"`
	ClientID       string      `json:"client_id"`
	ScheduledAt    string      `json:"scheduled_at"`
	PaymentMethod  string      `json:"payment_method"`
	Replace        ReplaceFlag `json:"substituir"`
}

// Validate checks required fields; time and method are checked downstream.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PractitionerID) == "" {
		return ErrMissingField.WithDetails(map[string]string{"field": "practitioner_id"})
	}
	if strings.TrimSpace(r.ClientID) == "" {
		return ErrMissingField.WithDetails(map[string]string{"field": "client_id"})
	}
	if strings.TrimSpace(r.ScheduledAt) == "" {
		return ErrMissingField.WithDetails(map[string]string{"field": "scheduled_at"})
	}
	return nil
}

// UpdateRequest is the body of PATCH /bookings/{bookingID}.
type UpdateRequest struct {
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CreateResult is what a successful create returns.
type CreateResult struct {
	Booking *Booking          `json:"booking"`
	Payment *payments.Payment `json:"payment"`
	// Superseded is the booking that was cancelled to free the slot, if any.
	Superseded *Booking `json:"superseded,omitempty"`
}
