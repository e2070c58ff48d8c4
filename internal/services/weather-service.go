package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"weatherbot/entity"
	"weatherbot/internal/config"
	apierrors "weatherbot/internal/lib/errors"
	"weatherbot/internal/lib/sl"
)

// WeatherService fetches forecasts from Open-Meteo. Every request
// carries the configured timeout so a hung call cannot stall its
// caller's attempt counter, and network or 5xx failures come back
// classified as transient for the retry policy.
type WeatherService struct {
	forecastUrl string
	client      *http.Client
	log         *slog.Logger
}

func NewWeatherService(conf *config.Config, log *slog.Logger) (*WeatherService, error) {
	if _, err := url.Parse(conf.Weather.ForecastUrl); err != nil {
		return nil, fmt.Errorf("forecast url: %w", err)
	}
	Configure(conf.Weather.RateLimit, conf.Weather.Burst)

	return &WeatherService{
		forecastUrl: conf.Weather.ForecastUrl,
		client:      &http.Client{Timeout: conf.Weather.Timeout},
		log:         log.With(sl.Module("weather")),
	}, nil
}

// Fetch retrieves the current forecast for the given coordinates.
func (s *WeatherService) Fetch(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apierrors.NewValidationError(
			fmt.Sprintf("coordinates out of range: %.4f, %.4f", lat, lon))
	}

	if err := Acquire(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("current", "temperature_2m,apparent_temperature,wind_speed_10m,weather_code")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,sunrise,sunset")
	params.Set("timezone", "auto")
	params.Set("windspeed_unit", "ms")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.forecastUrl+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierrors.Transient(fmt.Errorf("weather fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("weather provider returned %s", resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, apierrors.Transient(err)
		}
		return nil, err
	}

	var payload entity.OpenMeteoResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apierrors.Transient(fmt.Errorf("decode forecast: %w", err))
	}

	report := payload.Report()
	s.log.With(
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
		slog.Int("weather_code", report.WeatherCode),
	).Debug("forecast fetched")
	return &report, nil
}
