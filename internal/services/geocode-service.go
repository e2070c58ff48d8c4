package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"weatherbot/entity"
	apierrors "weatherbot/internal/lib/errors"
	"weatherbot/internal/lib/sl"

	"github.com/biter777/countries"
)

// GeocodeService resolves free-form place names to coordinates via
// Nominatim.
type GeocodeService struct {
	geocodeUrl string
	client     *http.Client
	log        *slog.Logger
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func NewGeocodeService(geocodeUrl string, client *http.Client, log *slog.Logger) *GeocodeService {
	return &GeocodeService{
		geocodeUrl: geocodeUrl,
		client:     client,
		log:        log.With(sl.Module("geocode")),
	}
}

// Resolve geocodes a city name. A place that cannot be found is a
// validation failure, not a transient one: retrying will not make an
// unknown city exist.
func (s *GeocodeService) Resolve(ctx context.Context, city string) (*entity.HomeLocation, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apierrors.NewValidationError("empty place name")
	}

	if err := Acquire(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geocodeUrl+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "weatherbot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apierrors.Transient(fmt.Errorf("geocode: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("geocode provider returned %s", resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, apierrors.Transient(err)
		}
		return nil, err
	}

	var results []nominatimResult
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apierrors.Transient(fmt.Errorf("decode geocode response: %w", err))
	}
	if len(results) == 0 {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("place %q", city))
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", first.Lon, err)
	}

	home := &entity.HomeLocation{
		Lat:     lat,
		Lon:     lon,
		Label:   first.DisplayName,
		Country: countryName(first.Address.CountryCode),
	}
	if home.Label == "" {
		home.Label = city
	}

	s.log.With(
		slog.String("city", city),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
	).Debug("place resolved")
	return home, nil
}

// countryName expands an ISO alpha-2 code from the geocoder into a
// display name; unknown codes are kept as-is.
func countryName(code string) string {
	if code == "" {
		return ""
	}
	country := countries.ByName(strings.ToUpper(code))
	if country == countries.Unknown {
		return code
	}
	return country.String()
}
