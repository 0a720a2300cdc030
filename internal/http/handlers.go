package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/outfit-guide-service/internal/lifecycle"
	"github.com/kjstillabower/outfit-guide-service/internal/models"
	"github.com/kjstillabower/outfit-guide-service/internal/observability"
	"github.com/kjstillabower/outfit-guide-service/internal/validation"
)

// WeatherGetter is the service surface the handlers need.
type WeatherGetter interface {
	GetWeather(ctx context.Context, location string) (models.WeatherResponse, error)
	ProviderName() string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService    WeatherGetter
	logger            *zap.Logger
	locationMinLength int
	locationMaxLength int
	healthStatusMu    sync.Mutex
	healthStatusPrev  string
}

// NewHandler returns a new Handler. Location bounds are in runes; zero disables a bound.
func NewHandler(weatherService WeatherGetter, logger *zap.Logger, locationMaxLength, locationMinLength int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		weatherService:    weatherService,
		logger:            logger,
		locationMinLength: locationMinLength,
		locationMaxLength: locationMaxLength,
	}
}

// errorDetail is the error envelope: {"detail": "<message>"}.
type errorDetail struct {
	Detail string `json:"detail"`
}

// GetWeather handles GET /api/weather?location=<text>.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	raw, present := r.URL.Query()["location"]
	if !present || len(raw) == 0 {
		writeDetail(w, http.StatusBadRequest, "location query parameter is required")
		return
	}
	location, err := validation.ValidateLocation(raw[0], h.locationMinLength, h.locationMaxLength)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.weatherService.GetWeather(r.Context(), location)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health. Reports 503 shutting-down while draining, healthy otherwise.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, statusCode := "healthy", http.StatusOK
	if lifecycle.IsShuttingDown() {
		status, statusCode = "shutting-down", http.StatusServiceUnavailable
	}

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", status))
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	resp := map[string]interface{}{
		"status":    status,
		"service":   "outfit-guide-service",
		"version":   "dev",
		"provider":  h.weatherService.ProviderName(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if d := lifecycle.DrainingFor(); d > 0 {
		resp["drainingSeconds"] = d.Seconds()
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorDetail{Detail: detail})
}

// writeServiceError writes a 502 with the full error chain as detail. A deadline hit by
// the request timeout is reported the same way, with its cause in the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("request deadline exceeded", zap.Error(err))
	} else {
		logger.Debug("upstream error", zap.Error(err))
	}
	writeDetail(w, http.StatusBadGateway, err.Error())
}
