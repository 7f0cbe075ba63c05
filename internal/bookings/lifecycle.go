package bookings

// Policy holds the configurable parts of the booking state machine.
type Policy struct {
	// AllowReactivation permits cancelled bookings to return to scheduled or confirmed.
	AllowReactivation bool
}

var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

var reactivations = map[Status][]Status{
	StatusCancelled: {StatusScheduled, StatusConfirmed},
}

// Allowed reports whether from -> to is an edge of the state machine under p.
func (p Policy) Allowed(from, to Status) bool {
	if from == to {
		return true
	}
	if contains(transitions[from], to) {
		return true
	}
	return p.AllowReactivation && contains(reactivations[from], to)
}

// Apply moves b to status to and reports whether anything changed.
func (p Policy) Apply(b *Booking, to Status) (bool, error) {
	if b.Status == to {
		return false, nil
	}
	if !p.Allowed(b.Status, to) {
		return false, ErrInvalidTransition.WithDetails(map[string]string{"from": string(b.Status), "to": string(to)})
	}
	setStatus(b, to)
	return true, nil
}

// OverrideConfirm is the administrative transition used when a payment
// settles. Any non-terminal booking becomes confirmed; a cancelled booking
// only when reactivation is allowed. Completed bookings are left alone.
func (p Policy) OverrideConfirm(b *Booking) (bool, error) {
	switch {
	case b.Status == StatusConfirmed, b.Status == StatusCompleted:
		return false, nil
	case !b.Status.Terminal():
		setStatus(b, StatusConfirmed)
		return true, nil
	default:
		return p.Apply(b, StatusConfirmed)
	}
}

func setStatus(b *Booking, to Status) {
	b.Status = to
	b.Active = to != StatusCancelled
}

func contains(statuses []Status, s Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
