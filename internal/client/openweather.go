package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
)

const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherClient is the keyed provider: one call per lookup, metric units.
type OpenWeatherClient struct {
	apiKey string
	api    upstream
}

func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if apiURL == "" {
		apiURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherClient{
		apiKey: apiKey,
		api:    newUpstream("openweather", apiURL, timeout),
	}, nil
}

func (c *OpenWeatherClient) Name() string {
	return "openweather"
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, location string) (models.WeatherRecord, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	var apiResp openWeatherResponse
	if err := c.api.getJSON(ctx, params, &apiResp); err != nil {
		return models.WeatherRecord{}, err
	}
	return normalizeOpenWeather(apiResp), nil
}

func normalizeOpenWeather(r openWeatherResponse) models.WeatherRecord {
	condition := ""
	if len(r.Weather) > 0 {
		condition = r.Weather[0].Main
	}

	temp := 0.0
	if r.Main.Temp != nil {
		temp = *r.Main.Temp
	}
	feelsLike := temp
	if r.Main.FeelsLike != nil {
		feelsLike = *r.Main.FeelsLike
	}

	return models.WeatherRecord{
		Location:    strings.Trim(fmt.Sprintf("%s, %s", r.Name, r.Sys.Country), ", "),
		Temperature: temp,
		Condition:   condition,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		FeelsLike:   &feelsLike,
	}
}
