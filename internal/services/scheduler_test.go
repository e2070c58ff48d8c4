package services

import (
	"sync"
	"testing"
	"time"
	"weatherbot/entity"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	return loc
}

func TestNextFire_PlainDay(t *testing.T) {
	berlin := mustLoadLocation(t, "Europe/Berlin")
	tod := entity.TimeOfDay{Hour: 8, Minute: 30}

	now := time.Date(2025, 6, 10, 7, 0, 0, 0, berlin)
	next := NextFire(tod, berlin, now)
	want := time.Date(2025, 6, 10, 8, 30, 0, 0, berlin)
	if !next.Equal(want) {
		t.Errorf("NextFire = %v, want %v", next, want)
	}

	// Past today's slot the fire moves to tomorrow.
	now = time.Date(2025, 6, 10, 9, 0, 0, 0, berlin)
	next = NextFire(tod, berlin, now)
	want = time.Date(2025, 6, 11, 8, 30, 0, 0, berlin)
	if !next.Equal(want) {
		t.Errorf("NextFire = %v, want %v", next, want)
	}
}

func TestNextFire_SpringForwardGap(t *testing.T) {
	// Europe/Berlin skips 02:00-03:00 on 2025-03-30. A 02:30 schedule
	// must fire at 03:00 that day, not silently skip to the 31st.
	berlin := mustLoadLocation(t, "Europe/Berlin")
	tod := entity.TimeOfDay{Hour: 2, Minute: 30}

	now := time.Date(2025, 3, 30, 1, 0, 0, 0, berlin)
	next := NextFire(tod, berlin, now)

	want := time.Date(2025, 3, 30, 3, 0, 0, 0, berlin)
	if !next.Equal(want) {
		t.Errorf("NextFire = %v, want %v", next, want)
	}
	if next.Day() != 30 {
		t.Errorf("fire day = %d, the delivery must not skip the transition day", next.Day())
	}
}

func TestNextFire_FallBackOverlap(t *testing.T) {
	// Europe/Berlin repeats 02:00-03:00 on 2025-10-26. An ambiguous
	// 02:30 schedule resolves to the earlier instant (still CEST),
	// which is 00:30 UTC.
	berlin := mustLoadLocation(t, "Europe/Berlin")
	tod := entity.TimeOfDay{Hour: 2, Minute: 30}

	now := time.Date(2025, 10, 26, 1, 0, 0, 0, berlin)
	next := NextFire(tod, berlin, now)

	want := time.Date(2025, 10, 26, 0, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextFire = %v (%v UTC), want the earlier occurrence %v", next, next.UTC(), want)
	}
	if next.Hour() != 2 || next.Minute() != 30 {
		t.Errorf("local wall clock = %02d:%02d, want 02:30", next.Hour(), next.Minute())
	}
}

func TestNextFire_ReArmIsNotTwentyFourHours(t *testing.T) {
	// Across the spring-forward day the gap between consecutive fires
	// is 23 hours. A naive +24h re-arm would drift the wall clock.
	berlin := mustLoadLocation(t, "Europe/Berlin")
	tod := entity.TimeOfDay{Hour: 8, Minute: 0}

	fire := time.Date(2025, 3, 29, 8, 0, 0, 0, berlin)
	next := NextFire(tod, berlin, fire)

	if got := next.Sub(fire); got != 23*time.Hour {
		t.Errorf("interval across spring forward = %v, want 23h", got)
	}
	if next.Hour() != 8 || next.Minute() != 0 {
		t.Errorf("local wall clock = %02d:%02d, want 08:00", next.Hour(), next.Minute())
	}
}

func TestNextFire_StrictlyAfterNow(t *testing.T) {
	berlin := mustLoadLocation(t, "Europe/Berlin")
	tod := entity.TimeOfDay{Hour: 8, Minute: 0}

	now := time.Date(2025, 6, 10, 8, 0, 0, 0, berlin)
	next := NextFire(tod, berlin, now)
	if !next.After(now) {
		t.Errorf("NextFire = %v, must be strictly after now %v", next, now)
	}
	if want := now.AddDate(0, 0, 1); !next.Equal(want) {
		t.Errorf("NextFire = %v, want %v", next, want)
	}
}

func TestScheduler_RegisterValidatesTimezone(t *testing.T) {
	s := NewScheduler(func(int64) {}, discardLogger())
	defer s.Stop()

	err := s.Register(1, entity.TimeOfDay{Hour: 8}, "Mars/Olympus")
	if err == nil {
		t.Fatal("Register with an unknown timezone should fail")
	}
	if s.Active() != 0 {
		t.Error("failed registration must not leave a job armed")
	}
}

func TestScheduler_RegisterDeregister(t *testing.T) {
	s := NewScheduler(func(int64) {}, discardLogger())
	defer s.Stop()

	if err := s.Register(1, entity.TimeOfDay{Hour: 8}, "Europe/Berlin"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register(2, entity.TimeOfDay{Hour: 9}, "UTC"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.Active() != 2 {
		t.Errorf("Active = %d, want 2", s.Active())
	}

	// Re-registration replaces, not duplicates.
	if err := s.Register(1, entity.TimeOfDay{Hour: 10}, "Europe/Berlin"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.Active() != 2 {
		t.Errorf("Active after re-register = %d, want 2", s.Active())
	}

	if !s.Deregister(1) {
		t.Error("Deregister of an armed actor should report true")
	}
	if s.Deregister(1) {
		t.Error("Deregister of an unarmed actor should report false")
	}
	if s.Active() != 1 {
		t.Errorf("Active = %d, want 1", s.Active())
	}
}

func TestScheduler_FiresAndReArms(t *testing.T) {
	// Pin the clock just before the slot so the timer fires at once;
	// each delivery pushes the clock past the slot so the re-armed
	// fire lands on the next day.
	var mu sync.Mutex
	current := time.Date(2025, 6, 10, 7, 59, 59, 900_000_000, time.UTC)

	fired := make(chan int64, 2)
	s := NewScheduler(func(actorID int64) {
		mu.Lock()
		current = current.Add(time.Hour)
		mu.Unlock()
		fired <- actorID
	}, discardLogger())
	defer s.Stop()

	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	if err := s.Register(7, entity.TimeOfDay{Hour: 8}, "UTC"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	select {
	case id := <-fired:
		if id != 7 {
			t.Errorf("fired actor = %d, want 7", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("schedule did not fire")
	}

	// The job stays armed for the next day.
	if s.Active() != 1 {
		t.Errorf("Active after firing = %d, want 1", s.Active())
	}
}
