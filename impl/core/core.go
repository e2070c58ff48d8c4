package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"weatherbot/entity"
	"weatherbot/internal/config"
	"weatherbot/internal/lib/sl"
	"weatherbot/internal/services"
)

// Quota gates every outbound provider call against the shared rolling
// budget.
type Quota interface {
	TryConsume() services.QuotaDecision
	RecordSuccess() error
	Status() entity.QuotaStatus
	MarkAlertSent(threshold float64, resetAt time.Time)
}

// WeatherProvider fetches one forecast; implementations carry their
// own timeout.
type WeatherProvider interface {
	Fetch(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error)
}

// SubscriptionRepository persists per-actor (time-of-day, timezone)
// pairs.
type SubscriptionRepository interface {
	SaveSubscription(sub *entity.Subscription) error
	GetSubscription(actorID int64) (*entity.Subscription, error)
	DeleteSubscription(actorID int64) (bool, error)
	ListSubscriptions() ([]entity.Subscription, error)
}

// Notifier carries delivery outcomes back to the presentation layer.
type Notifier interface {
	Notify(n entity.Notification)
	NotifyAdmins(msg string)
}

// Limiter is the interactive rate limiter, exposed here for the admin
// surface only; deliveries bypass it.
type Limiter interface {
	Stats(actorID int64) entity.ActorStats
	Unblock(actorID int64) bool
}

// Core glues scheduler, quota tracker, retry policy, provider and
// notifier together. It is the only component depending on all of
// them.
type Core struct {
	quota     Quota
	weather   WeatherProvider
	subs      SubscriptionRepository
	notifier  Notifier
	limiter   Limiter
	scheduler *services.Scheduler

	retryAttempts int
	retryDelay    time.Duration
	defaultTZ     string
	authToken     string

	log *slog.Logger
}

func New(conf *config.Config, log *slog.Logger) *Core {
	return &Core{
		retryAttempts: conf.Schedule.RetryAttempts,
		retryDelay:    conf.Schedule.RetryDelay,
		defaultTZ:     conf.Schedule.DefaultTimezone,
		authToken:     conf.Listen.Token,
		log:           log.With(sl.Module("core")),
	}
}

func (c *Core) SetQuota(quota Quota) {
	c.quota = quota
}

func (c *Core) SetWeather(weather WeatherProvider) {
	c.weather = weather
}

func (c *Core) SetRepository(subs SubscriptionRepository) {
	c.subs = subs
}

func (c *Core) SetNotifier(notifier Notifier) {
	c.notifier = notifier
}

func (c *Core) SetLimiter(limiter Limiter) {
	c.limiter = limiter
}

func (c *Core) SetScheduler(scheduler *services.Scheduler) {
	c.scheduler = scheduler
}

// Start re-arms the scheduler from the persisted subscriptions. Fire
// instants are recomputed from (time-of-day, timezone), never loaded.
func (c *Core) Start() {
	if c.subs == nil || c.scheduler == nil {
		c.log.Warn("core started without repository or scheduler")
		return
	}
	subs, err := c.subs.ListSubscriptions()
	if err != nil {
		c.log.Error("loading subscriptions", sl.Err(err))
		return
	}
	restored := 0
	for i := range subs {
		sub := &subs[i]
		if err = c.scheduler.Register(sub.ActorID, sub.Time, sub.Timezone); err != nil {
			c.log.With(
				slog.Int64("actor_id", sub.ActorID),
				sl.Err(err),
			).Error("re-arming subscription")
			continue
		}
		restored++
	}
	c.log.With(slog.Int("count", restored)).Info("subscriptions restored")
}

// Subscribe opts an actor into the daily delivery. An empty timezone
// falls back to the configured default.
func (c *Core) Subscribe(actorID int64, tod entity.TimeOfDay, tzName string, home entity.HomeLocation) error {
	if tzName == "" {
		tzName = c.defaultTZ
	}
	sub := &entity.Subscription{
		ActorID:  actorID,
		Time:     tod,
		Timezone: tzName,
		Home:     home,
		Created:  time.Now(),
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := c.subs.SaveSubscription(sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return c.scheduler.Register(actorID, tod, tzName)
}

// Unsubscribe opts an actor out and cancels any pending fire.
func (c *Core) Unsubscribe(actorID int64) (bool, error) {
	c.scheduler.Deregister(actorID)
	existed, err := c.subs.DeleteSubscription(actorID)
	if err != nil {
		return false, fmt.Errorf("deleting subscription: %w", err)
	}
	return existed, nil
}

// Subscription returns the actor's stored subscription, if any.
func (c *Core) Subscription(actorID int64) (*entity.Subscription, error) {
	return c.subs.GetSubscription(actorID)
}

// QuotaStatus exposes the budget snapshot to the admin surface.
func (c *Core) QuotaStatus() entity.QuotaStatus {
	return c.quota.Status()
}

// ActorStats exposes one actor's limiter snapshot to the admin
// surface.
func (c *Core) ActorStats(actorID int64) entity.ActorStats {
	return c.limiter.Stats(actorID)
}

// Unblock lifts an actor's block via the admin surface.
func (c *Core) Unblock(actorID int64) bool {
	return c.limiter.Unblock(actorID)
}
