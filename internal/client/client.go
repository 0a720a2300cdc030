package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
	"github.com/kjstillabower/outfit-guide-service/internal/observability"
)

// WeatherProvider resolves a free-text location to normalized current conditions.
type WeatherProvider interface {
	Name() string
	GetCurrentWeather(ctx context.Context, location string) (models.WeatherRecord, error)
}

var (
	ErrMissingCredential = errors.New("OPENWEATHER_KEY not configured")
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrLocationNotFound  = errors.New("could not geocode location")
	ErrUpstreamFailure   = errors.New("upstream failure")
)

// DefaultTimeout is the per-call budget for every outbound request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed upstream response is read for diagnostics.
const maxErrorBody = 4 << 10

// upstream is a single JSON-over-HTTP endpoint. Each call gets its own
// timeout; nothing is retried.
type upstream struct {
	name      string
	baseURL   string
	timeout   time.Duration
	userAgent string
	client    *http.Client
}

func newUpstream(name, baseURL string, timeout time.Duration) upstream {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return upstream{
		name:    name,
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// getJSON issues GET baseURL?params and decodes a 2xx body into out.
func (u upstream) getJSON(ctx context.Context, params url.Values, out any) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := u.buildRequest(reqCtx, params)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(u.name, "error").Inc()
		return fmt.Errorf("%s: build request: %w", u.name, err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.UpstreamCallsTotal.WithLabelValues(u.name, "error").Inc()
		observability.UpstreamDuration.WithLabelValues(u.name, "error").Observe(duration)

		if isTimeout(err) {
			return fmt.Errorf("%s: request timeout: %w", u.name, err)
		}
		return fmt.Errorf("%s: http request failed: %w", u.name, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(u.name, status).Inc()
	observability.UpstreamDuration.WithLabelValues(u.name, status).Observe(duration)

	if err := u.handleErrorResponse(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response body: %w", u.name, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parse response: %w", u.name, err)
	}
	return nil
}

func (u upstream) buildRequest(ctx context.Context, params url.Values) (*http.Request, error) {
	baseURL, err := url.Parse(u.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}

func (u upstream) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	sentinel := ErrUpstreamFailure
	if resp.StatusCode == http.StatusUnauthorized {
		sentinel = ErrInvalidAPIKey
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if msg := upstreamMessage(raw); msg != "" {
		return fmt.Errorf("%w: %s returned HTTP %d: %s", sentinel, u.name, resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: %s returned HTTP %d", sentinel, u.name, resp.StatusCode)
}

// upstreamMessage pulls a human-readable reason out of an error body.
// OpenWeather uses "message"; Open-Meteo uses "reason"; Nominatim uses "error".
func upstreamMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Reason != "":
		return body.Reason
	}
	switch e := body.Error.(type) {
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
