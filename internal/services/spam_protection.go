package services

import (
	"log/slog"
	"sync"
	"time"
	"weatherbot/entity"
	"weatherbot/internal/config"
	"weatherbot/internal/lib/sl"
)

// actorActivity is the limiter state for one actor. All fields are
// guarded by the SpamProtection mutex; nothing here is shared across
// actors.
type actorActivity struct {
	requestTimes    []time.Time // trailing hour of allowed requests
	lastRequestAt   time.Time
	blockedUntil    time.Time
	violations      int
	lastViolationAt time.Time
	dailyRequests   int
	lastResetDay    string
	lastBlockNotice time.Time
}

// SpamProtection is the per-actor multi-window rate limiter guarding
// every interactive request. Scheduled deliveries do not pass through
// it. It keeps no persistent state on purpose: a storage hiccup must
// never deny legitimate interactive traffic.
type SpamProtection struct {
	mu     sync.Mutex
	actors map[int64]*actorActivity

	maxPerMinute     int
	maxPerHour       int
	maxPerDay        int
	minCooldown      time.Duration
	maxMessageLength int
	blockDuration    time.Duration
	extendedBlock    time.Duration
	violationWindow  time.Duration
	renotifyInterval time.Duration
	idleTTL          time.Duration

	now func() time.Time
	log *slog.Logger
}

func NewSpamProtection(conf *config.Config, log *slog.Logger) *SpamProtection {
	return &SpamProtection{
		actors:           make(map[int64]*actorActivity),
		maxPerMinute:     conf.Spam.MaxRequestsPerMinute,
		maxPerHour:       conf.Spam.MaxRequestsPerHour,
		maxPerDay:        conf.Spam.MaxRequestsPerDay,
		minCooldown:      conf.Spam.MinCooldown,
		maxMessageLength: conf.Spam.MaxMessageLength,
		blockDuration:    conf.Spam.BlockDuration,
		extendedBlock:    conf.Spam.ExtendedBlockDuration,
		violationWindow:  conf.Spam.ViolationWindow,
		renotifyInterval: conf.Spam.RenotifyInterval,
		idleTTL:          conf.Spam.IdleTTL,
		now:              time.Now,
		log:              log.With(sl.Module("spam")),
	}
}

// CheckAndRecord decides whether one interactive request may proceed
// and, when allowed, accounts for it. Denial is a value; this method
// never returns an error.
func (s *SpamProtection) CheckAndRecord(actorID int64, messageSize int) entity.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	activity := s.activity(actorID)

	today := now.Format("2006-01-02")
	if activity.lastResetDay != today {
		activity.dailyRequests = 0
		activity.lastResetDay = today
	}

	// Oversized payloads are rejected before anything is counted.
	if messageSize > s.maxMessageLength {
		return entity.Deny(entity.DenyMessageTooLong, 0)
	}

	if now.Before(activity.blockedUntil) {
		remaining := activity.blockedUntil.Sub(now)
		if activity.lastBlockNotice.IsZero() || now.Sub(activity.lastBlockNotice) > s.renotifyInterval {
			activity.lastBlockNotice = now
			return entity.Deny(entity.DenyBlocked, remaining)
		}
		return entity.DenySilent(entity.DenyBlocked, remaining)
	}

	if !activity.lastRequestAt.IsZero() {
		sinceLast := now.Sub(activity.lastRequestAt)
		if sinceLast < s.minCooldown {
			return entity.Deny(entity.DenyTooFast, s.minCooldown-sinceLast)
		}
	}

	activity.requestTimes = pruneOlderThan(activity.requestTimes, now.Add(-time.Hour))

	minuteAgo := now.Add(-time.Minute)
	lastMinute := 0
	for _, ts := range activity.requestTimes {
		if ts.After(minuteAgo) {
			lastMinute++
		}
	}

	exceeded := lastMinute >= s.maxPerMinute ||
		len(activity.requestTimes) >= s.maxPerHour ||
		activity.dailyRequests >= s.maxPerDay
	if exceeded {
		retryAfter := s.recordViolation(activity, now)
		s.log.With(
			slog.Int64("actor_id", actorID),
			slog.Int("violations", activity.violations),
			slog.Duration("blocked_for", retryAfter),
		).Warn("rate ceiling exceeded")
		return entity.Deny(entity.DenyRateExceeded, retryAfter)
	}

	activity.requestTimes = append(activity.requestTimes, now)
	activity.lastRequestAt = now
	activity.dailyRequests++
	return entity.Allow()
}

// recordViolation applies the escalating penalty and returns the
// remaining block time. The short penalty applies on the first
// violation within the tracking window; later ones get the extended
// penalty. blockedUntil only ever moves forward.
func (s *SpamProtection) recordViolation(activity *actorActivity, now time.Time) time.Duration {
	if !activity.lastViolationAt.IsZero() && now.Sub(activity.lastViolationAt) > s.violationWindow {
		activity.violations = 0
	}
	activity.violations++
	activity.lastViolationAt = now

	duration := s.blockDuration
	if activity.violations > 1 {
		duration = s.extendedBlock
	}
	until := now.Add(duration)
	if until.After(activity.blockedUntil) {
		activity.blockedUntil = until
	}
	activity.lastBlockNotice = now
	return activity.blockedUntil.Sub(now)
}

// Unblock lifts an active block, keeping the violation history.
func (s *SpamProtection) Unblock(actorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.actors[actorID]
	if !ok {
		return false
	}
	activity.blockedUntil = time.Time{}
	activity.lastBlockNotice = time.Time{}
	s.log.With(slog.Int64("actor_id", actorID)).Info("actor unblocked")
	return true
}

// Stats returns a snapshot of one actor's limiter state.
func (s *SpamProtection) Stats(actorID int64) entity.ActorStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := entity.ActorStats{ActorID: actorID}
	activity, ok := s.actors[actorID]
	if !ok {
		return stats
	}
	now := s.now()
	stats.RequestsToday = activity.dailyRequests
	stats.Violations = activity.violations
	if now.Before(activity.blockedUntil) {
		stats.IsBlocked = true
		until := activity.blockedUntil
		stats.BlockedUntil = &until
	}
	return stats
}

// Cleanup drops actors with no activity within the idle TTL and no
// pending block. Returns the number of actors removed.
func (s *SpamProtection) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, activity := range s.actors {
		idle := now.Sub(activity.lastRequestAt) > s.idleTTL
		if idle && !now.Before(activity.blockedUntil) {
			delete(s.actors, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.With(slog.Int("count", removed)).Info("purged idle actors")
	}
	return removed
}

func (s *SpamProtection) activity(actorID int64) *actorActivity {
	activity, ok := s.actors[actorID]
	if !ok {
		activity = &actorActivity{}
		s.actors[actorID] = activity
	}
	return activity
}

func pruneOlderThan(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
