package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	EnvName    string
	ServerPort string
	LogLevel   string

	// OpenWeatherKey selects the keyed provider when non-empty.
	OpenWeatherKey string
	OpenWeatherURL string

	GeocoderURL       string
	GeocoderUserAgent string
	ForecastURL       string

	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration

	AllowedOrigins []string

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	LocationMinLength int
	LocationMaxLength int

	TrackedLocations []string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	OpenWeather struct {
		URL string `yaml:"url"`
	} `yaml:"openweather"`

	Geocoder struct {
		URL       string `yaml:"url"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"geocoder"`

	Forecast struct {
		URL string `yaml:"url"`
	} `yaml:"forecast"`

	Upstream struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Validation struct {
		LocationMinLength int `yaml:"location_min_length"`
		LocationMaxLength int `yaml:"location_max_length"`
	} `yaml:"validation"`

	Metrics struct {
		TrackedLocations []string `yaml:"tracked_locations"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	OpenWeatherKey string `yaml:"openweather_key"`
}

// envOverrides are read after the YAML file and win over it when set.
type envOverrides struct {
	EnvName        string `envconfig:"ENV_NAME" default:"dev"`
	Port           string `envconfig:"PORT"`
	OpenWeatherKey string `envconfig:"OPENWEATHER_KEY"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

const (
	defaultPort            = "8080"
	defaultUpstreamTimeout = 10 * time.Second
	defaultMaxLocation     = 200
)

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and the optional
// config/secrets.yaml, then applies environment overrides. A missing OpenWeather key is
// not an error: the service falls back to Nominatim + Open-Meteo. Call from project root.
func Load() (*Config, error) {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if env.EnvName == "" {
		env.EnvName = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env.EnvName+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{EnvName: env.EnvName}

	cfg.ServerPort = firstNonEmpty(env.Port, fc.Server.Port, defaultPort)
	cfg.LogLevel = firstNonEmpty(env.LogLevel, fc.Log.Level, "INFO")

	cfg.OpenWeatherKey = strings.TrimSpace(env.OpenWeatherKey)
	if cfg.OpenWeatherKey == "" {
		key, err := loadKeyFromSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.OpenWeatherKey = key
	}

	cfg.OpenWeatherURL = strings.TrimSpace(fc.OpenWeather.URL)
	cfg.GeocoderURL = strings.TrimSpace(fc.Geocoder.URL)
	cfg.GeocoderUserAgent = strings.TrimSpace(fc.Geocoder.UserAgent)
	cfg.ForecastURL = strings.TrimSpace(fc.Forecast.URL)

	cfg.UpstreamTimeout = parseDurationOrZero(fc.Upstream.Timeout, defaultUpstreamTimeout)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 2*defaultUpstreamTimeout+time.Second)

	origins := fc.CORS.AllowedOrigins
	if env.AllowedOrigins != "" {
		origins = env.AllowedOrigins
	}
	cfg.AllowedOrigins = ParseAllowedOrigins(origins)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.LocationMinLength = fc.Validation.LocationMinLength
	if cfg.LocationMinLength <= 0 {
		cfg.LocationMinLength = 1
	}
	cfg.LocationMaxLength = fc.Validation.LocationMaxLength
	if cfg.LocationMaxLength <= 0 {
		cfg.LocationMaxLength = defaultMaxLocation
	}
	cfg.TrackedLocations = fc.Metrics.TrackedLocations

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAllowedOrigins turns the ALLOWED_ORIGINS value into an allow-list.
// Empty or "*" allows every origin; otherwise entries are comma-separated,
// trimmed, and empty entries dropped.
func ParseAllowedOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func loadKeyFromSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.OpenWeatherKey), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// The fallback path makes two sequential upstream calls, so RequestTimeout is raised
// to cover both when it is configured too low.
func validate(cfg *Config) error {
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	if minimum := 2*cfg.UpstreamTimeout + time.Second; cfg.RequestTimeout < minimum {
		cfg.RequestTimeout = minimum
	}
	if cfg.LocationMinLength > cfg.LocationMaxLength {
		return fmt.Errorf("validation.location_min_length (%d) exceeds location_max_length (%d)",
			cfg.LocationMinLength, cfg.LocationMaxLength)
	}
	return nil
}
