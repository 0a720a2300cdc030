package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
)

const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// missingWeatherCode stands in for an absent weathercode field.
const missingWeatherCode = -1

var weatherCodes = map[int]string{
	0:  "Clear",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Rain showers",
	81: "Rain showers (moderate)",
	82: "Rain showers (violent)",
	95: "Thunderstorm",
}

// WeatherCodeText maps a WMO weather code to a short description. Unknown
// codes produce "Weather code <N>".
func WeatherCodeText(code int) string {
	if text, ok := weatherCodes[code]; ok {
		return text
	}
	return fmt.Sprintf("Weather code %d", code)
}

// OpenMeteoClient fetches current conditions for coordinates. The
// current_weather block carries no humidity.
type OpenMeteoClient struct {
	api upstream
}

func NewOpenMeteoClient(apiURL string, timeout time.Duration) *OpenMeteoClient {
	if apiURL == "" {
		apiURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{api: newUpstream("open-meteo", apiURL, timeout)}
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *float64 `json:"weathercode"`
	} `json:"current_weather"`
}

// CurrentWeather returns normalized conditions at place, in the local timezone of the coordinates.
func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, place Place) (models.WeatherRecord, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(place.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(place.Lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")

	var apiResp openMeteoResponse
	if err := c.api.getJSON(ctx, params, &apiResp); err != nil {
		return models.WeatherRecord{}, err
	}
	return normalizeOpenMeteo(apiResp, place), nil
}

func normalizeOpenMeteo(r openMeteoResponse, place Place) models.WeatherRecord {
	cw := r.CurrentWeather

	code := missingWeatherCode
	if cw.WeatherCode != nil {
		code = int(*cw.WeatherCode)
	}

	location := place.DisplayName
	if location == "" {
		location = fmt.Sprintf("%.4f,%.4f", place.Lat, place.Lon)
	}

	rec := models.WeatherRecord{
		Location:  location,
		Condition: WeatherCodeText(code),
		WindSpeed: cw.WindSpeed,
	}
	if cw.Temperature != nil {
		temp := *cw.Temperature
		rec.Temperature = temp
		rec.FeelsLike = &temp
	}
	return rec
}
