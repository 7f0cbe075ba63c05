package bookings

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	guard := NewClockGuard(time.UTC, nil)
	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	existing := &Booking{ID: "b-1", PractitionerID: "p-1", ScheduledAt: at, Active: true}

	if d, details := Resolve(false, nil, guard); d != DecisionProceed || details != nil {
		t.Fatalf("free slot should proceed, got %v %v", d, details)
	}
	if d, details := Resolve(true, existing, guard); d != DecisionSupersede || details != nil {
		t.Fatalf("replace should supersede, got %v %v", d, details)
	}

	d, details := Resolve(false, existing, guard)
	if d != DecisionReject {
		t.Fatalf("expected reject, got %v", d)
	}
	if details.ConflictingTime != "2026-05-02 09:00" || details.PractitionerID != "p-1" || details.Hint == "" {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestFindActiveConflictExactInstant(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, &Booking{ID: "b-1", PractitionerID: "p-1", ScheduledAt: at, Status: StatusScheduled, Active: true}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, &Booking{ID: "b-2", PractitionerID: "p-1", ScheduledAt: at.Add(time.Hour), Status: StatusCancelled, Active: false}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := FindActiveConflict(ctx, repo, "p-1", at)
	if err != nil || got == nil || got.ID != "b-1" {
		t.Fatalf("expected b-1, got %v %v", got, err)
	}
	if got, _ := FindActiveConflict(ctx, repo, "p-1", at.Add(30*time.Minute)); got != nil {
		t.Fatalf("no interval overlap model, got %v", got)
	}
	if got, _ := FindActiveConflict(ctx, repo, "p-1", at.Add(time.Hour)); got != nil {
		t.Fatalf("inactive booking must not conflict, got %v", got)
	}
	if got, _ := FindActiveConflict(ctx, repo, "p-2", at); got != nil {
		t.Fatalf("other practitioner must not conflict, got %v", got)
	}
}

func TestInMemoryRepositoryEnforcesActiveSlot(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, &Booking{ID: "b-1", PractitionerID: "p-1", ScheduledAt: at, Active: true}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, &Booking{ID: "b-2", PractitionerID: "p-1", ScheduledAt: at, Active: true}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := repo.Insert(ctx, &Booking{ID: "b-3", PractitionerID: "p-1", ScheduledAt: at, Active: false}); err != nil {
		t.Fatalf("inactive duplicate is allowed, got %v", err)
	}
	reactivated := &Booking{ID: "b-3", PractitionerID: "p-1", ScheduledAt: at, Status: StatusScheduled, Active: true}
	if err := repo.Update(ctx, reactivated); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("reactivating onto a taken slot must fail, got %v", err)
	}
}
