package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"weatherbot/internal/lib/validate"
)

// TimeOfDay is a wall-clock target for a daily delivery.
type TimeOfDay struct {
	Hour   int `json:"hour" bson:"hour" validate:"gte=0,lte=23"`
	Minute int `json:"minute" bson:"minute" validate:"gte=0,lte=59"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" (also accepts a bare "HH").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute := 0
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// HomeLocation is the place a daily delivery reports on.
type HomeLocation struct {
	Lat     float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lon     float64 `json:"lon" bson:"lon" validate:"gte=-180,lte=180"`
	Label   string  `json:"label" bson:"label" validate:"required"`
	Country string  `json:"country,omitempty" bson:"country,omitempty"`
}

// Subscription is one actor's opt-in to a daily delivery. Only the
// wall-clock target and the timezone name are persisted; the next
// absolute fire instant is always recomputed so it cannot go stale
// across DST transitions.
type Subscription struct {
	ActorID  int64        `json:"actor_id" bson:"actor_id" validate:"required"`
	Time     TimeOfDay    `json:"time" bson:"time"`
	Timezone string       `json:"timezone" bson:"timezone" validate:"required"`
	Home     HomeLocation `json:"home" bson:"home"`
	Created  time.Time    `json:"created" bson:"created"`
}

// Validate checks field ranges and that the timezone resolves against
// the system zone database.
func (s *Subscription) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return nil
}
