package services

import (
	"log/slog"
	"sort"
	"sync"
	"time"
	"weatherbot/entity"
	"weatherbot/internal/lib/sl"
)

// quotaWindow is the rolling budget horizon for the shared provider.
const quotaWindow = 24 * time.Hour

// alertThresholds are usage ratios announced to the administrators,
// each at most once per rolling window.
var alertThresholds = [...]float64{0.8, 0.9, 1.0}

// QuotaStore persists the call-timestamp log so the budget survives
// restarts.
type QuotaStore interface {
	Load() ([]time.Time, error)
	Save(timestamps []time.Time) error
}

// QuotaDecision is the answer of a consumption check.
type QuotaDecision struct {
	Allowed bool
	// ResetAt is when the rolling window frees capacity again; set
	// only on denial.
	ResetAt time.Time
}

// QuotaManager tracks the rolling 24h budget of calls to the weather
// provider, shared by every actor. All mutations are serialized by a
// single mutex. It fails closed: when the log cannot be loaded, no
// call is admitted.
type QuotaManager struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      int
	store      QuotaStore

	loaded bool

	alertResetAt time.Time
	maxNotified  float64

	now func() time.Time
	log *slog.Logger
}

func NewQuotaManager(limit int, store QuotaStore, log *slog.Logger) *QuotaManager {
	return &QuotaManager{
		limit: limit,
		store: store,
		now:   time.Now,
		log:   log.With(sl.Module("quota")),
	}
}

// TryConsume checks whether one provider call fits the budget. It
// mutates nothing: repeated checks on a full budget are idempotent,
// and a caller that aborts between the check and the call has not
// corrupted the accounting. Commit the call with RecordSuccess.
func (q *QuotaManager) TryConsume() QuotaDecision {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.ensureLoadedLocked(); err != nil {
		// Fail closed: never exceed a metered budget because the
		// log could not be read.
		q.log.Error("quota store unavailable, denying", sl.Err(err))
		return QuotaDecision{ResetAt: q.now().Add(quotaWindow)}
	}

	now := q.now()
	q.pruneLocked(now)

	if len(q.timestamps) >= q.limit {
		resetAt := q.timestamps[0].Add(quotaWindow)
		q.log.With(
			slog.Int("used", len(q.timestamps)),
			slog.Time("reset_at", resetAt),
		).Info("quota exhausted")
		return QuotaDecision{ResetAt: resetAt}
	}
	return QuotaDecision{Allowed: true}
}

// RecordSuccess commits one completed provider call and persists the
// log. The call stays counted in memory even when persistence fails.
func (q *QuotaManager) RecordSuccess() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.ensureLoadedLocked(); err != nil {
		return err
	}

	now := q.now()
	q.pruneLocked(now)
	q.timestamps = append(q.timestamps, now)

	if err := q.store.Save(q.timestamps); err != nil {
		q.log.Error("persisting quota log", sl.Err(err))
		return err
	}
	return nil
}

// Remaining reports how many provider calls the budget still admits.
func (q *QuotaManager) Remaining() int {
	return q.Status().Remaining
}

// Status is a derived read; observers may poll it freely. It also
// reports which alert thresholds have been crossed but not yet
// announced within the current window.
func (q *QuotaManager) Status() entity.QuotaStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := entity.QuotaStatus{Limit: q.limit}
	if err := q.ensureLoadedLocked(); err != nil {
		status.Used = q.limit
		return status
	}

	q.pruneLocked(q.now())
	status.Used = len(q.timestamps)
	status.Remaining = max(q.limit-status.Used, 0)
	if len(q.timestamps) > 0 {
		status.ResetAt = q.timestamps[0].Add(quotaWindow)
	}
	if q.limit > 0 {
		status.Ratio = float64(status.Used) / float64(q.limit)
	}

	// Alert bookkeeping restarts whenever the window rolls over.
	if !q.alertResetAt.Equal(status.ResetAt) {
		q.alertResetAt = status.ResetAt
		q.maxNotified = 0
	}
	for _, threshold := range alertThresholds {
		if status.Ratio >= threshold && threshold > q.maxNotified {
			status.PendingAlerts = append(status.PendingAlerts, threshold)
		}
	}
	return status
}

// MarkAlertSent records that the given threshold was announced for
// the window ending at resetAt.
func (q *QuotaManager) MarkAlertSent(threshold float64, resetAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.alertResetAt.Equal(resetAt) {
		q.alertResetAt = resetAt
		q.maxNotified = threshold
	} else if threshold > q.maxNotified {
		q.maxNotified = threshold
	}
}

func (q *QuotaManager) ensureLoadedLocked() error {
	if q.loaded {
		return nil
	}
	// A failed load is retried on the next call rather than cached, so
	// a recovered store brings the tracker back without a restart.
	timestamps, err := q.store.Load()
	if err != nil {
		return err
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
	q.timestamps = timestamps
	q.loaded = true
	return nil
}

func (q *QuotaManager) pruneLocked(now time.Time) {
	cutoff := now.Add(-quotaWindow)
	kept := q.timestamps[:0]
	for _, ts := range q.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	q.timestamps = kept
}
