package client

import (
	"context"
	"time"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
)

// Geocoder resolves free text to a Place.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Place, error)
}

// ForecastSource returns current conditions for a Place.
type ForecastSource interface {
	CurrentWeather(ctx context.Context, place Place) (models.WeatherRecord, error)
}

// FallbackProvider is the no-key path: geocode, then forecast, sequentially.
type FallbackProvider struct {
	geocoder Geocoder
	forecast ForecastSource
}

func NewFallbackProvider(geocoder Geocoder, forecast ForecastSource) *FallbackProvider {
	return &FallbackProvider{geocoder: geocoder, forecast: forecast}
}

func (p *FallbackProvider) Name() string {
	return "open-meteo"
}

func (p *FallbackProvider) GetCurrentWeather(ctx context.Context, location string) (models.WeatherRecord, error) {
	place, err := p.geocoder.Geocode(ctx, location)
	if err != nil {
		return models.WeatherRecord{}, err
	}
	return p.forecast.CurrentWeather(ctx, place)
}

// Options configures provider selection and the outbound endpoints.
type Options struct {
	OpenWeatherKey string
	OpenWeatherURL string
	GeocoderURL    string
	ForecastURL    string
	UserAgent      string
	Timeout        time.Duration
}

// NewProvider picks the keyed provider when a credential is configured and
// the geocode+forecast fallback otherwise. The credential is not validated.
func NewProvider(opts Options) (WeatherProvider, error) {
	if opts.OpenWeatherKey != "" {
		return NewOpenWeatherClient(opts.OpenWeatherKey, opts.OpenWeatherURL, opts.Timeout)
	}
	return NewFallbackProvider(
		NewNominatimGeocoder(opts.GeocoderURL, opts.UserAgent, opts.Timeout),
		NewOpenMeteoClient(opts.ForecastURL, opts.Timeout),
	), nil
}
