package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/outfit-guide-service/internal/observability"
)

func TestUpstream_GetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("q = %q, want London", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer server.Close()

	u := newUpstream("test", server.URL, time.Second)
	var out struct {
		Value int `json:"value"`
	}
	if err := u.getJSON(context.Background(), url.Values{"q": {"London"}}, &out); err != nil {
		t.Fatalf("getJSON() error = %v", err)
	}
	if out.Value != 42 {
		t.Errorf("Value = %d, want 42", out.Value)
	}
}

func TestUpstream_GetJSON_PropagatesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Correlation-ID"); got != "corr-1" {
			t.Errorf("X-Correlation-ID = %q, want corr-1", got)
		}
		if got := r.Header.Get("User-Agent"); got != "outfit-guide/test" {
			t.Errorf("User-Agent = %q, want outfit-guide/test", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	u := newUpstream("test", server.URL, time.Second)
	u.userAgent = "outfit-guide/test"
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	var out map[string]any
	if err := u.getJSON(ctx, url.Values{}, &out); err != nil {
		t.Fatalf("getJSON() error = %v", err)
	}
}

func TestUpstream_GetJSON_ErrorHandling(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantErr     error
		wantMessage string
	}{
		{
			name:        "401 unauthorized",
			statusCode:  http.StatusUnauthorized,
			body:        `{"cod":401,"message":"Invalid API key"}`,
			wantErr:     ErrInvalidAPIKey,
			wantMessage: "Invalid API key",
		},
		{
			name:        "404 city not found",
			statusCode:  http.StatusNotFound,
			body:        `{"cod":"404","message":"city not found"}`,
			wantErr:     ErrUpstreamFailure,
			wantMessage: "test returned HTTP 404: city not found",
		},
		{
			name:        "400 open-meteo reason",
			statusCode:  http.StatusBadRequest,
			body:        `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`,
			wantErr:     ErrUpstreamFailure,
			wantMessage: "Latitude must be in range",
		},
		{
			name:        "429 is not special-cased",
			statusCode:  http.StatusTooManyRequests,
			body:        ``,
			wantErr:     ErrUpstreamFailure,
			wantMessage: "HTTP 429",
		},
		{
			name:        "503 plain text",
			statusCode:  http.StatusServiceUnavailable,
			body:        `service unavailable`,
			wantErr:     ErrUpstreamFailure,
			wantMessage: "test returned HTTP 503",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			u := newUpstream("test", server.URL, time.Second)
			var out map[string]any
			err := u.getJSON(context.Background(), url.Values{}, &out)
			if err == nil {
				t.Fatal("getJSON() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error = %q, want message containing %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestUpstream_GetJSON_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	u := newUpstream("test", server.URL, time.Second)
	var out map[string]any
	err := u.getJSON(context.Background(), url.Values{}, &out)
	if err == nil {
		t.Fatal("getJSON() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "parse response") {
		t.Errorf("error = %v, want parse response error", err)
	}
	if got := CategorizeError(err); got != ErrorCategoryParsing {
		t.Errorf("CategorizeError() = %v, want %v", got, ErrorCategoryParsing)
	}
}

func TestUpstream_GetJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	u := newUpstream("test", server.URL, 50*time.Millisecond)
	var out map[string]any
	err := u.getJSON(context.Background(), url.Values{}, &out)
	if err == nil {
		t.Fatal("getJSON() expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "request timeout") {
		t.Errorf("error = %v, want request timeout", err)
	}
	if got := CategorizeError(err); got != ErrorCategoryTimeout {
		t.Errorf("CategorizeError() = %v, want %v", got, ErrorCategoryTimeout)
	}
}

func TestUpstream_GetJSON_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	u := newUpstream("test", addr, time.Second)
	var out map[string]any
	err := u.getJSON(context.Background(), url.Values{}, &out)
	if err == nil {
		t.Fatal("getJSON() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "http request failed") {
		t.Errorf("error = %v, want http request failed", err)
	}
}

func TestUpstream_InvalidBaseURL(t *testing.T) {
	u := newUpstream("test", "://bad", time.Second)
	var out map[string]any
	err := u.getJSON(context.Background(), url.Values{}, &out)
	if err == nil || !strings.Contains(err.Error(), "invalid API URL") {
		t.Errorf("error = %v, want invalid API URL", err)
	}
}

func TestNewUpstream_DefaultTimeout(t *testing.T) {
	u := newUpstream("test", "http://example.invalid", 0)
	if u.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", u.timeout, DefaultTimeout)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{
		200: "success",
		204: "success",
		429: "rate_limited",
		404: "client_error",
		500: "server_error",
		302: "error",
	}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
