package bookings

import (
	"context"
	"time"
)

// Decision is the outcome of conflict resolution.
type Decision int

const (
	DecisionProceed Decision = iota
	DecisionReject
	DecisionSupersede
)

func (d Decision) String() string {
	switch d {
	case DecisionReject:
		return "rejected"
	case DecisionSupersede:
		return "superseded"
	default:
		return "proceed"
	}
}

// ConflictDetails is returned to the caller when a slot is taken.
type ConflictDetails struct {
	ConflictingTime string `json:"conflicting_time"`
	PractitionerID  string `json:"practitioner_id"`
	Hint            string `json:"hint"`
}

const replaceHint = `resend with "substituir": "true" to replace the existing booking`

// FindActiveConflict returns the active booking at exactly (practitionerID, at), or nil.
func FindActiveConflict(ctx context.Context, repo Repository, practitionerID string, at time.Time) (*Booking, error) {
	return repo.FindActiveAt(ctx, practitionerID, at)
}

// Resolve decides what to do with an existing booking at the requested slot.
// Replacement is last writer wins.
func Resolve(replace bool, conflict *Booking, guard *ClockGuard) (Decision, *ConflictDetails) {
	if conflict == nil {
		return DecisionProceed, nil
	}
	if replace {
		return DecisionSupersede, nil
	}
	return DecisionReject, &ConflictDetails{
		ConflictingTime: guard.Format(conflict.ScheduledAt),
		PractitionerID:  conflict.PractitionerID,
		Hint:            replaceHint,
	}
}

// supersede frees the slot held by b.
func supersede(b *Booking) {
	b.Status = StatusCancelled
	b.Active = false
}
