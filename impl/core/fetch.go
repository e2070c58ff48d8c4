package core

import (
	"context"
	"net/http"
	"time"
	"weatherbot/entity"
	apierrors "weatherbot/internal/lib/errors"
	"weatherbot/internal/lib/sl"
)

// FetchWeather serves an interactive weather request. It passes the
// same quota gate as scheduled deliveries but is not retried; the user
// is waiting and can resend.
func (c *Core) FetchWeather(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error) {
	decision := c.quota.TryConsume()
	if !decision.Allowed {
		err := &apierrors.APIError{
			Code:       apierrors.ErrCodeQuotaExhausted,
			Message:    "weather API quota exhausted",
			HTTPStatus: http.StatusTooManyRequests,
		}
		if !decision.ResetAt.IsZero() {
			err = err.WithDetail("reset_at", decision.ResetAt.UTC().Format(time.RFC3339))
		}
		c.announceQuotaAlerts()
		return nil, err
	}

	report, err := c.weather.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if err = c.quota.RecordSuccess(); err != nil {
		c.log.Error("recording quota consumption", sl.Err(err))
	}
	c.announceQuotaAlerts()
	return report, nil
}
