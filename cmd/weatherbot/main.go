package main

import (
	"flag"
	"log/slog"
	"net/http"
	"time"
	"weatherbot/bot"
	"weatherbot/entity"
	"weatherbot/impl/core"
	"weatherbot/internal/config"
	"weatherbot/internal/database"
	repository "weatherbot/internal/database/mongo"
	"weatherbot/internal/http-server/api"
	"weatherbot/internal/lib/logger"
	"weatherbot/internal/lib/sl"
	"weatherbot/internal/services"
)

// logNotifier stands in for the Telegram notifier when the bot is
// disabled, so scheduled deliveries still have somewhere to report.
type logNotifier struct {
	log *slog.Logger
}

func (n *logNotifier) Notify(msg entity.Notification) {
	n.log.With(
		slog.Int64("actor_id", msg.ActorID),
		slog.String("kind", string(msg.Kind)),
	).Info("delivery notification")
}

func (n *logNotifier) NotifyAdmins(msg string) {
	n.log.Warn(msg)
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
			tgBot = nil
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelDebug)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting weatherbot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(conf, lg)

	// The quota log lives in MySQL when it is configured, otherwise in
	// a local JSON file.
	var quotaStore services.QuotaStore
	db, err := database.NewSQLClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mysql client")
	}
	if db != nil {
		quotaStore = db
		lg.With(
			slog.String("host", conf.SQL.HostName),
			slog.String("port", conf.SQL.Port),
			slog.String("user", conf.SQL.UserName),
			slog.String("database", conf.SQL.Database),
		).Info("mysql quota store initialized")
		defer db.Close()

		lg.Info("mysql stats", slog.String("connections", db.Stats()))
		go func() {
			ticker := time.NewTicker(30 * time.Minute)
			defer ticker.Stop()

			for range ticker.C {
				lg.Info("mysql", slog.String("stats", db.Stats()))
			}
		}()
	} else {
		quotaStore = database.NewQuotaFile(conf.Quota.StoragePath, lg)
		lg.With(
			slog.String("path", conf.Quota.StoragePath),
		).Info("file quota store initialized")
	}

	quota := services.NewQuotaManager(conf.Quota.DailyLimit, quotaStore, lg)
	handler.SetQuota(quota)

	spam := services.NewSpamProtection(conf, lg)
	handler.SetLimiter(spam)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			spam.Cleanup()
		}
	}()

	weather, err := services.NewWeatherService(conf, lg)
	if err != nil {
		lg.Error("weather service", sl.Err(err))
		return
	}
	handler.SetWeather(weather)
	lg.With(
		slog.String("url", conf.Weather.ForecastUrl),
	).Info("weather service initialized")

	geocode := services.NewGeocodeService(conf.Weather.GeocodeUrl,
		&http.Client{Timeout: conf.Weather.Timeout}, lg)

	var subs core.SubscriptionRepository
	mongo, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if mongo != nil {
		subs = mongo
		lg.Info("mongo subscription store initialized")
	} else {
		subs = database.NewMemorySubscriptions()
		lg.Warn("subscriptions are kept in memory only")
	}
	handler.SetRepository(subs)

	scheduler := services.NewScheduler(handler.Deliver, lg)
	handler.SetScheduler(scheduler)
	defer scheduler.Stop()

	if tgBot != nil {
		tgBot.SetGuard(spam)
		tgBot.SetCore(handler)
		tgBot.SetGeocoder(geocode)
		handler.SetNotifier(tgBot)

		go func() {
			if err := tgBot.Start(); err != nil {
				lg.Error("telegram bot error", slog.String("error", err.Error()))
			}
		}()
	} else {
		handler.SetNotifier(&logNotifier{log: lg})
	}

	handler.Start()

	if conf.Listen.Enabled {
		if err = api.New(conf, lg, handler); err != nil {
			lg.Error("http api", sl.Err(err))
		}
	} else {
		select {}
	}

	lg.Error("service stopped")
}
