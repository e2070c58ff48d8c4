package entity

import "fmt"

// WeatherReport is the provider-independent result of one forecast
// fetch.
type WeatherReport struct {
	Temperature  float64 `json:"temperature"`
	FeelsLike    float64 `json:"feels_like"`
	WindSpeed    float64 `json:"wind_speed"`
	WeatherCode  int     `json:"weather_code"`
	TempMax      float64 `json:"temp_max"`
	TempMin      float64 `json:"temp_min"`
	PrecipChance int     `json:"precip_chance"`
	Sunrise      string  `json:"sunrise"`
	Sunset       string  `json:"sunset"`
	PlaceLabel   string  `json:"place_label,omitempty"`
}

// OpenMeteoResponse mirrors the subset of the Open-Meteo forecast
// payload the bot consumes.
type OpenMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		FeelsLike   float64 `json:"apparent_temperature"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax      []float64 `json:"temperature_2m_max"`
		TempMin      []float64 `json:"temperature_2m_min"`
		PrecipChance []int     `json:"precipitation_probability_max"`
		Sunrise      []string  `json:"sunrise"`
		Sunset       []string  `json:"sunset"`
	} `json:"daily"`
}

// Report flattens the payload, taking today's row of the daily block.
func (r *OpenMeteoResponse) Report() WeatherReport {
	report := WeatherReport{
		Temperature: r.Current.Temperature,
		FeelsLike:   r.Current.FeelsLike,
		WindSpeed:   r.Current.WindSpeed,
		WeatherCode: r.Current.WeatherCode,
	}
	if len(r.Daily.TempMax) > 0 {
		report.TempMax = r.Daily.TempMax[0]
	}
	if len(r.Daily.TempMin) > 0 {
		report.TempMin = r.Daily.TempMin[0]
	}
	if len(r.Daily.PrecipChance) > 0 {
		report.PrecipChance = r.Daily.PrecipChance[0]
	}
	if len(r.Daily.Sunrise) > 0 {
		report.Sunrise = r.Daily.Sunrise[0]
	}
	if len(r.Daily.Sunset) > 0 {
		report.Sunset = r.Daily.Sunset[0]
	}
	return report
}

// wmoDescriptions maps the WMO weather interpretation codes used by
// Open-Meteo to short labels.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "rain",
	65: "heavy rain",
	71: "slight snow",
	73: "snow",
	75: "heavy snow",
	80: "rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// Condition returns a short textual label for the report's WMO code.
func (w *WeatherReport) Condition() string {
	if desc, ok := wmoDescriptions[w.WeatherCode]; ok {
		return desc
	}
	return fmt.Sprintf("weather code %d", w.WeatherCode)
}
