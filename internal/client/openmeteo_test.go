package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherCodeText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Clear"},
		{1, "Mainly clear"},
		{2, "Partly cloudy"},
		{3, "Overcast"},
		{45, "Fog"},
		{48, "Depositing rime fog"},
		{51, "Light drizzle"},
		{53, "Moderate drizzle"},
		{55, "Dense drizzle"},
		{61, "Slight rain"},
		{63, "Moderate rain"},
		{65, "Heavy rain"},
		{71, "Slight snow"},
		{73, "Moderate snow"},
		{75, "Heavy snow"},
		{80, "Rain showers"},
		{81, "Rain showers (moderate)"},
		{82, "Rain showers (violent)"},
		{95, "Thunderstorm"},
		{96, "Weather code 96"},
		{4, "Weather code 4"},
		{-1, "Weather code -1"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, WeatherCodeText(tt.code), "WeatherCodeText(%d)", tt.code)
	}
}

func TestNormalizeOpenMeteo(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		place     Place
		wantLoc   string
		wantTemp  float64
		wantCond  string
		wantFeels *float64
		wantWind  *float64
	}{
		{
			name:      "slight rain",
			raw:       `{"current_weather":{"temperature":15.2,"windspeed":7.9,"weathercode":61}}`,
			place:     Place{Lat: 51.5, Lon: -0.12, DisplayName: "London"},
			wantLoc:   "London",
			wantTemp:  15.2,
			wantCond:  "Slight rain",
			wantFeels: ptr(15.2),
			wantWind:  ptr(7.9),
		},
		{
			name:      "no display name uses coordinates",
			raw:       `{"current_weather":{"temperature":3,"weathercode":0}}`,
			place:     Place{Lat: 12.3456789, Lon: -98.7654321},
			wantLoc:   "12.3457,-98.7654",
			wantTemp:  3,
			wantCond:  "Clear",
			wantFeels: ptr(3),
		},
		{
			name:     "missing code and temperature",
			raw:      `{"current_weather":{}}`,
			place:    Place{DisplayName: "Nowhere"},
			wantLoc:  "Nowhere",
			wantTemp: 0,
			wantCond: "Weather code -1",
		},
		{
			name:      "unknown code",
			raw:       `{"current_weather":{"temperature":-2.5,"weathercode":77}}`,
			place:     Place{DisplayName: "Oslo"},
			wantLoc:   "Oslo",
			wantTemp:  -2.5,
			wantCond:  "Weather code 77",
			wantFeels: ptr(-2.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r openMeteoResponse
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))

			got := normalizeOpenMeteo(r, tt.place)
			assert.Equal(t, tt.wantLoc, got.Location)
			assert.Equal(t, tt.wantTemp, got.Temperature)
			assert.Equal(t, tt.wantCond, got.Condition)
			assert.Nil(t, got.Humidity)
			assert.Equal(t, tt.wantFeels, got.FeelsLike)
			assert.Equal(t, tt.wantWind, got.WindSpeed)
		})
	}
}

func TestOpenMeteoClient_CurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "28.6139", q.Get("latitude"))
		assert.Equal(t, "77.209", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("current_weather"))
		assert.Equal(t, "auto", q.Get("timezone"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":28.625,"longitude":77.25,"current_weather":{"time":"2026-10-14T12:00","temperature":33.4,"windspeed":5.1,"winddirection":280,"weathercode":1}}`))
	}))
	defer server.Close()

	c := NewOpenMeteoClient(server.URL, time.Second)
	got, err := c.CurrentWeather(context.Background(), Place{Lat: 28.6139, Lon: 77.209, DisplayName: "New Delhi, India"})
	require.NoError(t, err)
	assert.Equal(t, "New Delhi, India", got.Location)
	assert.Equal(t, 33.4, got.Temperature)
	assert.Equal(t, "Mainly clear", got.Condition)
	assert.Nil(t, got.Humidity)
	require.NotNil(t, got.FeelsLike)
	assert.Equal(t, 33.4, *got.FeelsLike)
}

func ptr(v float64) *float64 {
	return &v
}
