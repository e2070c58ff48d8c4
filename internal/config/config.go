package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local" env-required:"true"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BotName string `yaml:"bot_name" env-default:""`
		ApiKey  string `yaml:"api_key" env:"BOT_TOKEN" env-default:""`
		AdminId string `yaml:"admin_id" env:"ADMIN_IDS" env-default:""`
	} `yaml:"telegram"`
	Spam struct {
		MaxRequestsPerMinute  int           `yaml:"max_requests_per_minute" env:"SPAM_MAX_REQUESTS_PER_MINUTE" env-default:"30" validate:"gt=0"`
		MaxRequestsPerHour    int           `yaml:"max_requests_per_hour" env:"SPAM_MAX_REQUESTS_PER_HOUR" env-default:"200" validate:"gt=0"`
		MaxRequestsPerDay     int           `yaml:"max_requests_per_day" env:"SPAM_MAX_REQUESTS_PER_DAY" env-default:"300" validate:"gt=0"`
		BlockDuration         time.Duration `yaml:"block_duration" env:"SPAM_BLOCK_DURATION" env-default:"5m" validate:"gt=0"`
		ExtendedBlockDuration time.Duration `yaml:"extended_block_duration" env:"SPAM_EXTENDED_BLOCK_DURATION" env-default:"1h" validate:"gt=0"`
		MinCooldown           time.Duration `yaml:"min_cooldown" env:"SPAM_MIN_COOLDOWN" env-default:"1s" validate:"gte=0"`
		MaxMessageLength      int           `yaml:"max_message_length" env:"SPAM_MAX_MESSAGE_LENGTH" env-default:"1000" validate:"gt=0"`
		ViolationWindow       time.Duration `yaml:"violation_window" env-default:"24h"`
		IdleTTL               time.Duration `yaml:"idle_ttl" env-default:"720h"`
		RenotifyInterval      time.Duration `yaml:"renotify_interval" env-default:"5m"`
	} `yaml:"spam"`
	Quota struct {
		DailyLimit  int    `yaml:"daily_limit" env:"WEATHER_API_DAILY_LIMIT" env-default:"1000" validate:"gt=0"`
		StoragePath string `yaml:"storage_path" env:"WEATHER_API_QUOTA_PATH" env-default:"data/weather_api_quota.json"`
	} `yaml:"quota"`
	Schedule struct {
		DefaultTimezone string        `yaml:"default_timezone" env-default:"Europe/Berlin"`
		RetryAttempts   int           `yaml:"retry_attempts" env-default:"3" validate:"gt=0"`
		RetryDelay      time.Duration `yaml:"retry_delay" env-default:"5s" validate:"gte=0"`
	} `yaml:"schedule"`
	Weather struct {
		ForecastUrl string        `yaml:"forecast_url" env-default:"https://api.open-meteo.com/v1/forecast"`
		GeocodeUrl  string        `yaml:"geocode_url" env-default:"https://nominatim.openstreetmap.org/search"`
		Timeout     time.Duration `yaml:"timeout" env-default:"10s" validate:"gt=0"`
		RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
		Burst       int           `yaml:"burst" env-default:"10"`
	} `yaml:"weather"`
	SQL struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Driver   string `yaml:"driver" env-default:"mysql"`
		HostName string `yaml:"hostname" env-default:"localhost"`
		UserName string `yaml:"username" env-default:"root"`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:""`
		Port     string `yaml:"port" env-default:"3306"`
	} `yaml:"sql"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"localhost"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"weatherbot"`
	} `yaml:"mongo"`
	Listen struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"8080"`
		Token   string `yaml:"token" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = instance.check(); err != nil {
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// check rejects configurations the components could only trip over at
// call time: non-positive ceilings, a shrinking escalation, a default
// timezone the zone database does not know.
func (c *Config) check() error {
	if c.Spam.MaxRequestsPerMinute <= 0 || c.Spam.MaxRequestsPerHour <= 0 || c.Spam.MaxRequestsPerDay <= 0 {
		return fmt.Errorf("spam: request ceilings must be positive")
	}
	if c.Spam.BlockDuration <= 0 || c.Spam.ExtendedBlockDuration < c.Spam.BlockDuration {
		return fmt.Errorf("spam: extended block duration must be at least the short block duration")
	}
	if c.Spam.MaxMessageLength <= 0 {
		return fmt.Errorf("spam: max message length must be positive")
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota: daily limit must be positive")
	}
	if c.Schedule.RetryAttempts <= 0 {
		return fmt.Errorf("schedule: retry attempts must be positive")
	}
	if c.Schedule.RetryDelay < 0 {
		return fmt.Errorf("schedule: retry delay must not be negative")
	}
	if _, err := time.LoadLocation(c.Schedule.DefaultTimezone); err != nil {
		return fmt.Errorf("schedule: default timezone: %w", err)
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather: timeout must be positive")
	}
	return nil
}
