package core

import (
	"context"
	"fmt"
	"log/slog"
	"weatherbot/entity"
	"weatherbot/internal/lib/sl"
	"weatherbot/internal/services"
)

// Deliver runs one scheduled delivery for an actor: quota gate, then
// the retry-wrapped provider fetch, then notification. It is invoked
// by the scheduler and must never take the process down; any failure
// affects only this actor's occurrence.
func (c *Core) Deliver(actorID int64) {
	defer func() {
		if r := recover(); r != nil {
			c.log.With(
				slog.Int64("actor_id", actorID),
				slog.Any("panic", r),
			).Error("delivery panicked")
		}
	}()

	log := c.log.With(slog.Int64("actor_id", actorID))

	sub, err := c.subs.GetSubscription(actorID)
	if err != nil {
		log.Error("loading subscription for delivery", sl.Err(err))
		return
	}
	if sub == nil {
		// Opted out between scheduling and firing.
		log.Debug("no subscription at fire time, skipping")
		return
	}

	// The budget gate runs before any provider traffic; a denied check
	// costs nothing and repeats safely.
	decision := c.quota.TryConsume()
	if !decision.Allowed {
		c.notifier.Notify(entity.Notification{
			ActorID: actorID,
			Kind:    entity.NotifyQuotaExhausted,
			ResetAt: decision.ResetAt,
		})
		c.announceQuotaAlerts()
		return
	}

	report, err := services.Retry(context.Background(), c.retryAttempts, c.retryDelay,
		func(ctx context.Context) (*entity.WeatherReport, error) {
			return c.weather.Fetch(ctx, sub.Home.Lat, sub.Home.Lon)
		})
	if err != nil {
		log.Error("weather fetch failed after retries", sl.Err(err))
		c.notifier.Notify(entity.Notification{
			ActorID: actorID,
			Kind:    entity.NotifyTransientFailure,
		})
		return
	}

	if err = c.quota.RecordSuccess(); err != nil {
		// The call already happened and is counted in memory; the
		// persistence failure is for the admins, not this actor.
		log.Error("recording quota consumption", sl.Err(err))
	}

	report.PlaceLabel = sub.Home.Label
	c.notifier.Notify(entity.Notification{
		ActorID: actorID,
		Kind:    entity.NotifyDeliverySucceeded,
		Report:  report,
	})
	log.Debug("daily weather delivered")

	c.announceQuotaAlerts()
}

// announceQuotaAlerts pushes any newly crossed usage thresholds to the
// administrators, at most once per threshold per rolling window.
func (c *Core) announceQuotaAlerts() {
	status := c.quota.Status()
	for _, threshold := range status.PendingAlerts {
		c.notifier.NotifyAdmins(fmt.Sprintf(
			"weather API quota at %.0f%%: %d of %d used",
			threshold*100, status.Used, status.Limit,
		))
		c.quota.MarkAlertSent(threshold, status.ResetAt)
	}
}
