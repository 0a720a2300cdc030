package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/outfit-guide-service/internal/client"
	"github.com/kjstillabower/outfit-guide-service/internal/models"
	"github.com/kjstillabower/outfit-guide-service/internal/observability"
	"github.com/kjstillabower/outfit-guide-service/internal/suggest"
)

// ErrUnresolvedWeather wraps every provider failure. The underlying cause stays in the chain
// and in the message so the HTTP boundary can report it verbatim.
var ErrUnresolvedWeather = errors.New("unable to resolve weather for this location")

// WeatherService resolves a location through the configured provider and attaches
// clothing suggestions. It holds no per-request state.
type WeatherService struct {
	provider client.WeatherProvider
}

// NewWeatherService creates a WeatherService backed by provider.
func NewWeatherService(provider client.WeatherProvider) *WeatherService {
	return &WeatherService{provider: provider}
}

// ProviderName reports which provider path is active ("openweather" or "open-meteo").
func (s *WeatherService) ProviderName() string {
	return s.provider.Name()
}

// GetWeather fetches current conditions for location and derives suggestions.
// The location is passed to the provider as given, after trimming.
func (s *WeatherService) GetWeather(ctx context.Context, location string) (models.WeatherResponse, error) {
	location = strings.TrimSpace(location)
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	observability.RecordWeatherQuery(location)

	record, err := s.provider.GetCurrentWeather(ctx, location)
	if err != nil {
		category := client.CategorizeError(err)
		observability.UpstreamErrorsTotal.WithLabelValues(s.provider.Name(), string(category)).Inc()
		logger.Warn("weather lookup failed",
			zap.String("location", location),
			zap.String("provider", s.provider.Name()),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		return models.WeatherResponse{}, fmt.Errorf("%w: %w", ErrUnresolvedWeather, err)
	}

	suggestions := suggest.FromWeather(record)
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	titles := make([]string, 0, len(suggestions))
	for _, sg := range suggestions {
		titles = append(titles, sg.Title)
	}
	observability.RecordSuggestions(titles)

	logger.Debug("weather served",
		zap.String("location", location),
		zap.String("resolved", record.Location),
		zap.String("provider", s.provider.Name()),
		zap.Strings("suggestions", titles),
		zap.Duration("duration", time.Since(start)),
	)
	return models.WeatherResponse{Weather: record, Suggestions: suggestions}, nil
}
