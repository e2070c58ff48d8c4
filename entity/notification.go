package entity

import "time"

// NotificationKind discriminates outcomes surfaced to the actor. The
// presentation layer translates these into user-facing text.
type NotificationKind string

const (
	NotifyRateLimited       NotificationKind = "RATE_LIMITED"
	NotifyMessageTooLong    NotificationKind = "MESSAGE_TOO_LONG"
	NotifyQuotaExhausted    NotificationKind = "QUOTA_EXHAUSTED"
	NotifyTransientFailure  NotificationKind = "TRANSIENT_FAILURE"
	NotifyDeliverySucceeded NotificationKind = "DELIVERY_SUCCEEDED"
)

// Notification is the orchestrator's callback payload for one actor.
type Notification struct {
	ActorID    int64
	Kind       NotificationKind
	RetryAfter time.Duration
	// ResetAt is set for quota denials: the instant the rolling
	// window frees capacity again.
	ResetAt time.Time
	// Report is set only for DeliverySucceeded.
	Report *WeatherReport
}
