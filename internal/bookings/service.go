package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/internal/clients"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/internal/practitioners"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var bookingsTracer = otel.Tracer("clinic.internal.bookings")

// EventRecorder appends an event to the outbox of the current unit of work.
type EventRecorder interface {
	Insert(ctx context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error)
}

// Tx is the set of repositories bound to one unit of work.
type Tx struct {
	Bookings Repository
	Payments payments.Repository
	// Outbox may be nil when event publishing is disabled.
	Outbox EventRecorder
}

// UnitOfWork runs fn atomically. Work for the same practitioner is serialized.
type UnitOfWork interface {
	WithinPractitioner(ctx context.Context, practitionerID string, fn func(ctx context.Context, tx Tx) error) error
}

type practitionerReader interface {
	GetByID(ctx context.Context, id string) (*practitioners.Practitioner, error)
}

type clientReader interface {
	GetByID(ctx context.Context, id string) (*clients.Client, error)
}

// PaymentRegistrar mirrors a committed payment into the gateway. It never
// reports failure to the caller.
type PaymentRegistrar interface {
	RegisterPayment(ctx context.Context, p *payments.Payment)
}

// Config carries the booking settings resolved at startup.
type Config struct {
	Location *time.Location
	Policy   Policy
}

// Service runs the booking workflows: create with conflict resolution,
// schedule and status updates, and payment driven confirmation.
type Service struct {
	uow           UnitOfWork
	bookings      Repository
	practitioners practitionerReader
	clients       clientReader
	policy        Policy
	guard         *ClockGuard
	registrar     PaymentRegistrar
	locker        SlotLocker
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

// NewService constructs a bookings service. bookings serves reads outside a
// unit of work.
func NewService(uow UnitOfWork, bookings Repository, practitionersRepo practitionerReader, clientsRepo clientReader, cfg Config, logger *logging.Logger) *Service {
	if uow == nil || bookings == nil {
		panic("bookings: unit of work and repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		uow:           uow,
		bookings:      bookings,
		practitioners: practitionersRepo,
		clients:       clientsRepo,
		policy:        cfg.Policy,
		guard:         NewClockGuard(cfg.Location, time.Now),
		logger:        logger,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.guard = NewClockGuard(s.guard.Location(), now)
	return s
}

func (s *Service) WithRegistrar(r PaymentRegistrar) *Service {
	s.registrar = r
	return s
}

func (s *Service) WithSlotLocker(l SlotLocker) *Service {
	s.locker = l
	return s
}

func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// Create books a slot and opens its pending payment in one unit of work.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.practitioner_id", req.PractitionerID),
		attribute.String("clinic.client_id", req.ClientID),
	)

	result, err := s.create(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCreate(createOutcome(err))
		return nil, err
	}
	s.metrics.ObserveCreate("created")

	s.logger.Info("booking created",
		"booking_id", result.Booking.ID,
		"practitioner_id", result.Booking.PractitionerID,
		"payment_id", result.Payment.ID,
		"superseded", result.Superseded != nil,
	)
	if s.registrar != nil {
		s.registrar.RegisterPayment(ctx, result.Payment)
	}
	return result, nil
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	at, err := s.guard.Check(req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	practitioner, err := s.practitioners.GetByID(ctx, req.PractitionerID)
	if err != nil {
		return nil, err
	}
	if !practitioner.Active {
		return nil, ErrPractitionerInactive
	}
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, practitioner.ID, at)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var result CreateResult
	err = s.uow.WithinPractitioner(ctx, practitioner.ID, func(ctx context.Context, tx Tx) error {
		conflict, err := FindActiveConflict(ctx, tx.Bookings, practitioner.ID, at)
		if err != nil {
			return err
		}

		decision, details := Resolve(bool(req.Replace), conflict, s.guard)
		switch decision {
		case DecisionReject:
			s.metrics.ObserveConflict(decision.String())
			return ErrSlotConflict.WithDetails(details)
		case DecisionSupersede:
			s.metrics.ObserveConflict(decision.String())
			supersede(conflict)
			if err := tx.Bookings.Update(ctx, conflict); err != nil {
				return err
			}
			result.Superseded = conflict
		}

		b := &Booking{
			ID:             uuid.New().String(),
			PractitionerID: practitioner.ID,
			ClientID:       req.ClientID,
			ScheduledAt:    at,
			Status:         StatusScheduled,
			Active:         true,
		}
		if err := tx.Bookings.Insert(ctx, b); err != nil {
			return err
		}

		payment, err := payments.NewLedger(tx.Payments).CreatePending(ctx, payments.PendingRequest{
			BookingID: b.ID,
			ClientID:  b.ClientID,
			Method:    req.PaymentMethod,
			Price:     practitioner.Price,
			DueDate:   dueDate(s.guard.Now(), s.guard.Location()),
		})
		if err != nil {
			return err
		}

		if result.Superseded != nil {
			eventID, occurredAt := s.stamp()
			if err := s.record(ctx, tx, events.TypeBookingCancelled, result.Superseded.ID, events.BookingCancelledV1{
				EventID:        eventID,
				OccurredAt:     occurredAt,
				BookingID:      result.Superseded.ID,
				PractitionerID: result.Superseded.PractitionerID,
				ClientID:       result.Superseded.ClientID,
				ScheduledAt:    result.Superseded.ScheduledAt,
				Reason:         "superseded",
				ReplacedBy:     b.ID,
			}); err != nil {
				return err
			}
		}
		eventID, occurredAt := s.stamp()
		created := events.BookingCreatedV1{
			EventID:        eventID,
			OccurredAt:     occurredAt,
			BookingID:      b.ID,
			PractitionerID: b.PractitionerID,
			ClientID:       b.ClientID,
			PaymentID:      payment.ID,
			PaymentMethod:  string(payment.Method),
			ScheduledAt:    b.ScheduledAt,
		}
		if result.Superseded != nil {
			created.Superseded = result.Superseded.ID
		}
		if err := s.record(ctx, tx, events.TypeBookingCreated, b.ID, created); err != nil {
			return err
		}

		result.Booking = b
		result.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a booking by id.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// GetActiveByPractitioner lists the practitioner's active bookings ordered by instant.
func (s *Service) GetActiveByPractitioner(ctx context.Context, practitionerID string) ([]*Booking, error) {
	if _, err := s.practitioners.GetByID(ctx, practitionerID); err != nil {
		return nil, err
	}
	return s.bookings.ListActiveByPractitioner(ctx, practitionerID)
}

// HasFutureActiveBookings reports whether a practitioner still has active bookings after now.
func (s *Service) HasFutureActiveBookings(ctx context.Context, practitionerID string, now time.Time) (bool, error) {
	return s.bookings.HasFutureActiveBookings(ctx, practitionerID, now)
}

// UpdateSchedule moves a non-terminal booking to a new future instant. The
// conflict resolver is not consulted; the storage rule still refuses a second
// active booking on the same slot.
func (s *Service) UpdateSchedule(ctx context.Context, id, scheduledAt string) (*Booking, error) {
	return s.Update(ctx, id, UpdateRequest{ScheduledAt: &scheduledAt})
}

// UpdateStatus applies a state machine transition.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Booking, error) {
	return s.Update(ctx, id, UpdateRequest{Status: &status})
}

// Update applies a schedule change and/or status change in one unit of work.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.update")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.booking_id", id))

	var (
		at     time.Time
		status Status
		err    error
	)
	if req.ScheduledAt != nil {
		if at, err = s.guard.Check(*req.ScheduledAt); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if status, err = ParseStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *Booking
	err = s.uow.WithinPractitioner(ctx, current.PractitionerID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		dirty := false
		if req.ScheduledAt != nil && !b.ScheduledAt.Equal(at) {
			if b.Status.Terminal() {
				return ErrBookingClosed
			}
			b.ScheduledAt = at
			dirty = true
		}
		statusChanged := false
		if req.Status != nil {
			if statusChanged, err = s.policy.Apply(b, status); err != nil {
				return err
			}
			dirty = dirty || statusChanged
		}
		if dirty {
			if err := tx.Bookings.Update(ctx, b); err != nil {
				return err
			}
		}
		if statusChanged {
			if err := s.recordStatus(ctx, tx, b, "status_update"); err != nil {
				return err
			}
		}
		updated = b
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking updated", "booking_id", updated.ID, "status", updated.Status, "active", updated.Active)
	return updated, nil
}

// ForceConfirm confirms the booking after its payment settled, bypassing the
// normal edges through the administrative override.
func (s *Service) ForceConfirm(ctx context.Context, bookingID string) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.force_confirm")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.booking_id", bookingID))

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.uow.WithinPractitioner(ctx, current.PractitionerID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		changed, err := s.policy.OverrideConfirm(b)
		if err != nil || !changed {
			return err
		}
		if err := tx.Bookings.Update(ctx, b); err != nil {
			return err
		}
		return s.recordStatus(ctx, tx, b, "payment")
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("booking confirmed by payment", "booking_id", bookingID)
	return nil
}

func (s *Service) recordStatus(ctx context.Context, tx Tx, b *Booking, source string) error {
	eventID, occurredAt := s.stamp()
	switch b.Status {
	case StatusConfirmed:
		return s.record(ctx, tx, events.TypeBookingConfirmed, b.ID, events.BookingConfirmedV1{
			EventID:        eventID,
			OccurredAt:     occurredAt,
			BookingID:      b.ID,
			PractitionerID: b.PractitionerID,
			ClientID:       b.ClientID,
			ScheduledAt:    b.ScheduledAt,
			Source:         source,
		})
	case StatusCancelled:
		return s.record(ctx, tx, events.TypeBookingCancelled, b.ID, events.BookingCancelledV1{
			EventID:        eventID,
			OccurredAt:     occurredAt,
			BookingID:      b.ID,
			PractitionerID: b.PractitionerID,
			ClientID:       b.ClientID,
			ScheduledAt:    b.ScheduledAt,
			Reason:         source,
		})
	}
	return nil
}

func (s *Service) record(ctx context.Context, tx Tx, eventType, aggregateID string, payload any) error {
	if tx.Outbox == nil {
		return nil
	}
	_, err := tx.Outbox.Insert(ctx, aggregateID, eventType, payload)
	return err
}

func (s *Service) stamp() (string, time.Time) {
	return uuid.New().String(), s.guard.Now().UTC()
}

// dueDate is today's date in loc.
func dueDate(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSlotConflict), errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotBusy):
		return "conflict"
	case apperr.KindOf(err) == apperr.KindValidation:
		return "invalid"
	case apperr.KindOf(err) == apperr.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
