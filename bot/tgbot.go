package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"weatherbot/entity"
	apierrors "weatherbot/internal/lib/errors"
	"weatherbot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// Guard is the interactive rate limiter every handler passes through.
type Guard interface {
	CheckAndRecord(actorID int64, messageSize int) entity.Verdict
}

// Core is the bot's view of the delivery orchestrator.
type Core interface {
	Subscribe(actorID int64, tod entity.TimeOfDay, tzName string, home entity.HomeLocation) error
	Unsubscribe(actorID int64) (bool, error)
	Subscription(actorID int64) (*entity.Subscription, error)
	FetchWeather(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error)
	QuotaStatus() entity.QuotaStatus
	ActorStats(actorID int64) entity.ActorStats
	Unblock(actorID int64) bool
}

// Geocoder resolves a city argument to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (*entity.HomeLocation, error)
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminIds    []int64
	minLogLevel slog.Level
	adminLevels map[int64]slog.Level

	guard    Guard
	core     Core
	geocoder Geocoder
}

func NewTgBot(botName, apiKey string, adminIdsStr string, log *slog.Logger) (*TgBot, error) {
	var adminIds []int64
	if adminIdsStr != "" {
		idStrs := strings.Split(adminIdsStr, ",")
		for _, idStr := range idStrs {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid admin_id value: %q, must be a comma-separated list of integers", adminIdsStr)
			}
			adminIds = append(adminIds, id)
		}
	}

	minLogLevel := slog.LevelDebug

	adminLevels := make(map[int64]slog.Level)
	for i, adminId := range adminIds {
		if i == 0 {
			adminLevels[adminId] = slog.LevelDebug
		} else {
			adminLevels[adminId] = slog.LevelWarn
		}
	}

	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminIds:    adminIds,
		botUsername: botName,
		minLogLevel: minLogLevel,
		adminLevels: adminLevels,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) SetGuard(guard Guard) {
	t.guard = guard
}

func (t *TgBot) SetCore(core Core) {
	t.core = core
}

func (t *TgBot) SetGeocoder(geocoder Geocoder) {
	t.geocoder = geocoder
}

func (t *TgBot) Start() error {

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Println("an error occurred while handling update:", err.Error())
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.guarded(t.start)))
	dispatcher.AddHandler(handlers.NewCommand("weather", t.guarded(t.weather)))
	dispatcher.AddHandler(handlers.NewCommand("subscribe", t.guarded(t.subscribe)))
	dispatcher.AddHandler(handlers.NewCommand("unsubscribe", t.guarded(t.unsubscribe)))
	dispatcher.AddHandler(handlers.NewCommand("stats", t.guarded(t.stats)))
	dispatcher.AddHandler(handlers.NewCommand("quota", t.quota))
	dispatcher.AddHandler(handlers.NewCommand("unblock", t.unblock))
	dispatcher.AddHandler(handlers.NewCommand("level", t.level))

	// Start receiving updates.
	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		panic("failed to start polling: " + err.Error())
	}

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

type handlerFunc = func(b *tgbotapi.Bot, ctx *ext.Context) error

// guarded runs the rate limiter before the wrapped handler. On a
// denial the handler never runs; the user gets the reason unless the
// verdict is silent.
func (t *TgBot) guarded(fn handlerFunc) handlerFunc {
	return func(b *tgbotapi.Bot, ctx *ext.Context) error {
		userId := ctx.EffectiveUser.Id
		size := 0
		if ctx.EffectiveMessage != nil {
			size = len(ctx.EffectiveMessage.Text)
		}

		verdict := t.guard.CheckAndRecord(userId, size)
		if verdict.Allowed {
			return fn(b, ctx)
		}
		if verdict.Silent {
			return nil
		}
		_, err := ctx.EffectiveMessage.Reply(b, denialText(verdict), nil)
		return err
	}
}

func denialText(v entity.Verdict) string {
	switch v.Reason {
	case entity.DenyMessageTooLong:
		return "Your message is too long, please shorten it."
	case entity.DenyTooFast:
		return fmt.Sprintf("Too fast, wait %.1f seconds.", v.RetryAfter.Seconds())
	case entity.DenyBlocked, entity.DenyRateExceeded:
		return fmt.Sprintf("Request limit exceeded, try again in %d seconds.", int(v.RetryAfter.Seconds())+1)
	default:
		return "Request rejected."
	}
}

func (t *TgBot) start(b *tgbotapi.Bot, ctx *ext.Context) error {
	_, err := ctx.EffectiveMessage.Reply(b,
		"Commands:\n"+
			"/weather <city> — current weather\n"+
			"/subscribe HH:MM <city> [timezone] — daily weather delivery\n"+
			"/unsubscribe — stop daily delivery\n"+
			"/stats — your usage",
		nil)
	return err
}

func (t *TgBot) weather(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		_, err := ctx.EffectiveMessage.Reply(b, "Usage: /weather <city>", nil)
		return err
	}
	city := strings.Join(args[1:], " ")

	reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	home, err := t.geocoder.Resolve(reqCtx, city)
	if err != nil {
		t.log.With(slog.Int64("id", userId)).Warn("geocode failed", sl.Err(err))
		_, err = ctx.EffectiveMessage.Reply(b, fmt.Sprintf("Could not find %q.", city), nil)
		return err
	}

	report, err := t.core.FetchWeather(reqCtx, home.Lat, home.Lon)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apierrors.ErrCodeQuotaExhausted {
			_, err = ctx.EffectiveMessage.Reply(b,
				"The weather service budget is exhausted for now, try again later.", nil)
			return err
		}
		t.log.With(slog.Int64("id", userId)).Warn("weather fetch failed", sl.Err(err))
		_, err = ctx.EffectiveMessage.Reply(b, "Weather service is temporarily unavailable.", nil)
		return err
	}

	report.PlaceLabel = home.Label
	t.plainResponse(ctx.EffectiveChat.Id, Sanitize(formatReport(report)))
	return nil
}

func (t *TgBot) subscribe(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 3 {
		_, err := ctx.EffectiveMessage.Reply(b, "Usage: /subscribe HH:MM <city> [timezone]", nil)
		return err
	}

	tod, err := entity.ParseTimeOfDay(args[1])
	if err != nil {
		_, err = ctx.EffectiveMessage.Reply(b, "Time must look like 08:30.", nil)
		return err
	}

	// A trailing zone-database name ("Area/Location") is a timezone.
	tzName := ""
	cityArgs := args[2:]
	if last := cityArgs[len(cityArgs)-1]; strings.Contains(last, "/") {
		tzName = last
		cityArgs = cityArgs[:len(cityArgs)-1]
	}
	if len(cityArgs) == 0 {
		_, err = ctx.EffectiveMessage.Reply(b, "Usage: /subscribe HH:MM <city> [timezone]", nil)
		return err
	}
	city := strings.Join(cityArgs, " ")

	reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	home, err := t.geocoder.Resolve(reqCtx, city)
	if err != nil {
		_, err = ctx.EffectiveMessage.Reply(b, fmt.Sprintf("Could not find %q.", city), nil)
		return err
	}

	if err = t.core.Subscribe(userId, tod, tzName, *home); err != nil {
		t.log.With(slog.Int64("id", userId)).Warn("subscribe failed", sl.Err(err))
		_, err = ctx.EffectiveMessage.Reply(b,
			"Could not create the subscription, check the timezone name.", nil)
		return err
	}

	_, err = ctx.EffectiveMessage.Reply(b,
		fmt.Sprintf("Daily weather for %s at %s.", city, tod.String()), nil)
	return err
}

func (t *TgBot) unsubscribe(b *tgbotapi.Bot, ctx *ext.Context) error {
	existed, err := t.core.Unsubscribe(ctx.EffectiveUser.Id)
	if err != nil {
		t.log.Warn("unsubscribe failed", sl.Err(err))
		_, err = ctx.EffectiveMessage.Reply(b, "Could not remove the subscription, try again.", nil)
		return err
	}
	msg := "You had no subscription."
	if existed {
		msg = "Daily delivery stopped."
	}
	_, err = ctx.EffectiveMessage.Reply(b, msg, nil)
	return err
}

func (t *TgBot) stats(b *tgbotapi.Bot, ctx *ext.Context) error {
	stats := t.core.ActorStats(ctx.EffectiveUser.Id)
	msg := fmt.Sprintf("Requests today: %d", stats.RequestsToday)
	if stats.IsBlocked && stats.BlockedUntil != nil {
		msg += fmt.Sprintf("\nBlocked until %s", stats.BlockedUntil.Format("15:04:05"))
	}
	if sub, err := t.core.Subscription(ctx.EffectiveUser.Id); err == nil && sub != nil {
		msg += fmt.Sprintf("\nDaily weather at %s (%s)", sub.Time.String(), sub.Timezone)
	}
	_, err := ctx.EffectiveMessage.Reply(b, msg, nil)
	return err
}

// quota reports the shared provider budget; admins only.
func (t *TgBot) quota(b *tgbotapi.Bot, ctx *ext.Context) error {
	if !t.isAdmin(ctx.EffectiveUser.Id) {
		_, err := ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return err
	}
	status := t.core.QuotaStatus()
	msg := fmt.Sprintf("Weather API quota: %d/%d used (%.0f%%)", status.Used, status.Limit, status.Ratio*100)
	if !status.ResetAt.IsZero() {
		msg += fmt.Sprintf("\nWindow resets at %s", status.ResetAt.UTC().Format("15:04 MST"))
	}
	_, err := ctx.EffectiveMessage.Reply(b, msg, nil)
	return err
}

// unblock lifts another user's rate-limit block; admins only.
func (t *TgBot) unblock(b *tgbotapi.Bot, ctx *ext.Context) error {
	if !t.isAdmin(ctx.EffectiveUser.Id) {
		_, err := ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return err
	}
	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		_, err := ctx.EffectiveMessage.Reply(b, "Usage: /unblock <user id>", nil)
		return err
	}
	target, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		_, err = ctx.EffectiveMessage.Reply(b, "User id must be a number.", nil)
		return err
	}
	msg := "User was not blocked."
	if t.core.Unblock(target) {
		msg = fmt.Sprintf("User %d unblocked.", target)
	}
	_, err = ctx.EffectiveMessage.Reply(b, msg, nil)
	return err
}

func (t *TgBot) isAdmin(userId int64) bool {
	for _, adminId := range t.adminIds {
		if userId == adminId {
			return true
		}
	}
	return false
}

// SetMinLogLevel sets the minimum log level for all admin notifications
func (t *TgBot) SetMinLogLevel(level slog.Level) {
	t.minLogLevel = level

	for _, adminId := range t.adminIds {
		t.adminLevels[adminId] = level
	}
}

// SetAdminLogLevel sets the minimum log level for a specific admin
func (t *TgBot) SetAdminLogLevel(adminId int64, level slog.Level) {
	t.adminLevels[adminId] = level
}

// level handles the /level command to set the minimum log level for admin notifications
func (t *TgBot) level(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id

	if !t.isAdmin(userId) {
		_, err := ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return err
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		currentLevel := t.adminLevels[userId]
		t.plainResponse(userId, fmt.Sprintf("Your current log level: %s\nAvailable levels: debug, info, warn, error", currentLevel.String()))
		return nil
	}

	levelStr := strings.ToLower(args[1])
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		t.plainResponse(userId, fmt.Sprintf("Invalid level: %s\nAvailable levels: debug, info, warn, error", levelStr))
		return nil
	}

	t.SetAdminLogLevel(userId, level)
	t.plainResponse(userId, fmt.Sprintf("Your log level set to: %s", level.String()))
	return nil
}
