package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
)

func BenchmarkGetWeather(b *testing.B) {
	router := newTestRouter(&mockProvider{weather: models.WeatherRecord{
		Location:    "Seattle, US",
		Temperature: 11.5,
		Condition:   "Drizzle",
	}})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/weather?location=Seattle", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("status = %d", w.Code)
		}
	}
}

func BenchmarkGetHealth(b *testing.B) {
	router := newTestRouter(&mockProvider{})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
}
