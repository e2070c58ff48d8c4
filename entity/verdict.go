package entity

import "time"

// DenyReason explains why an interactive request was rejected.
type DenyReason string

const (
	DenyMessageTooLong DenyReason = "MESSAGE_TOO_LONG"
	DenyBlocked        DenyReason = "BLOCKED"
	DenyTooFast        DenyReason = "TOO_FAST"
	DenyRateExceeded   DenyReason = "RATE_EXCEEDED"
)

// Verdict is the rate limiter's decision for a single request.
// Denial is a normal value, never an error.
type Verdict struct {
	Allowed    bool
	Reason     DenyReason
	RetryAfter time.Duration
	// Silent suppresses the user-facing reply for repeated requests
	// during an active block, so a blocked actor cannot use the
	// denial notification itself as a spam channel.
	Silent bool
}

func Allow() Verdict {
	return Verdict{Allowed: true}
}

func Deny(reason DenyReason, retryAfter time.Duration) Verdict {
	return Verdict{Reason: reason, RetryAfter: retryAfter}
}

func DenySilent(reason DenyReason, retryAfter time.Duration) Verdict {
	return Verdict{Reason: reason, RetryAfter: retryAfter, Silent: true}
}

// ActorStats is a read-only snapshot of one actor's limiter state,
// exposed to the admin surface.
type ActorStats struct {
	ActorID       int64      `json:"actor_id"`
	RequestsToday int        `json:"requests_today"`
	IsBlocked     bool       `json:"is_blocked"`
	Violations    int        `json:"violations"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
}
