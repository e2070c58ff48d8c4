package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"weatherbot/entity"
	apierrors "weatherbot/internal/lib/errors"
	"weatherbot/internal/lib/sl"
)

// DeliveryFunc runs one scheduled delivery for an actor. It must not
// panic; a failed delivery only affects that occurrence.
type DeliveryFunc func(actorID int64)

// Scheduler fires one delivery per actor per local calendar day at the
// actor's chosen wall-clock time. The next fire instant is recomputed
// from (time-of-day, timezone) after every firing, so DST transitions
// never skip or double a delivery.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[int64]*scheduledJob
	deliver DeliveryFunc

	now func() time.Time
	log *slog.Logger
}

type scheduledJob struct {
	cancel chan struct{}
	tod    entity.TimeOfDay
	loc    *time.Location
}

func NewScheduler(deliver DeliveryFunc, log *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:    make(map[int64]*scheduledJob),
		deliver: deliver,
		now:     time.Now,
		log:     log.With(sl.Module("scheduler")),
	}
}

// Register arms (or re-arms) the daily delivery for an actor. An
// existing pending fire is cancelled atomically, so a stale fire can
// never race a re-registration. A malformed timezone fails here, not
// at fire time.
func (s *Scheduler) Register(actorID int64, tod entity.TimeOfDay, tzName string) error {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return apierrors.NewConfigurationError(fmt.Sprintf("unknown timezone %q", tzName))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[actorID]; ok {
		close(existing.cancel)
	}
	job := &scheduledJob{
		cancel: make(chan struct{}),
		tod:    tod,
		loc:    loc,
	}
	s.jobs[actorID] = job

	s.log.With(
		slog.Int64("actor_id", actorID),
		slog.String("time", tod.String()),
		slog.String("timezone", tzName),
	).Info("daily delivery scheduled")

	go s.run(actorID, job)
	return nil
}

// Deregister cancels the actor's pending fire, if any.
func (s *Scheduler) Deregister(actorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[actorID]
	if !ok {
		return false
	}
	close(job.cancel)
	delete(s.jobs, actorID)
	s.log.With(slog.Int64("actor_id", actorID)).Info("daily delivery cancelled")
	return true
}

// Active reports the number of armed schedules.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop cancels every pending fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		close(job.cancel)
		delete(s.jobs, id)
	}
}

func (s *Scheduler) run(actorID int64, job *scheduledJob) {
	for {
		next := NextFire(job.tod, job.loc, s.now())
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-job.cancel:
			timer.Stop()
			return
		case <-timer.C:
			// A cancellation that raced the timer wins.
			select {
			case <-job.cancel:
				return
			default:
			}
			s.deliver(actorID)
		}
	}
}

// NextFire returns the soonest instant strictly after now whose local
// representation in loc matches tod. A wall clock removed by a
// spring-forward gap resolves to the first instant after the gap; a
// wall clock repeated by a fall-back overlap resolves to the earlier
// occurrence.
func NextFire(tod entity.TimeOfDay, loc *time.Location, now time.Time) time.Time {
	local := now.In(loc)
	year, month, day := local.Date()
	for offset := 0; ; offset++ {
		candidate := resolveWallClock(year, month, day+offset, tod.Hour, tod.Minute, loc)
		if candidate.After(now) {
			return candidate
		}
	}
}

func resolveWallClock(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if t.Hour() == hour && t.Minute() == minute {
		// The wall clock exists. During a fall-back overlap the same
		// wall clock names two instants; probing one DST-shift back
		// finds the earlier one when t is the later.
		for _, shift := range []time.Duration{-time.Hour, -30 * time.Minute} {
			if earlier := t.Add(shift); sameWallClock(earlier, t) {
				return earlier
			}
		}
		return t
	}
	// The wall clock fell into a spring-forward gap and time.Date
	// shifted it. Fire at the first valid instant after the gap
	// instead of silently skipping the day.
	return gapEnd(t, loc)
}

func sameWallClock(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

// gapEnd locates the offset transition near the shifted instant by
// binary search and returns the transition instant itself, which is
// the first valid local time after the gap.
func gapEnd(around time.Time, loc *time.Location) time.Time {
	lo := around.Add(-3 * time.Hour)
	hi := around.Add(3 * time.Hour)
	_, after := hi.In(loc).Zone()
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		if _, offset := mid.In(loc).Zone(); offset == after {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi.Round(time.Second).In(loc)
}
