package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent    = "outfit-guide/1.0"
)

// Place is a geocoded location.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// NominatimGeocoder resolves free text to coordinates via the OpenStreetMap
// search API. Nominatim's usage policy requires an identifying User-Agent.
type NominatimGeocoder struct {
	api upstream
}

func NewNominatimGeocoder(apiURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	if apiURL == "" {
		apiURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	api := newUpstream("nominatim", apiURL, timeout)
	api.userAgent = userAgent
	return &NominatimGeocoder{api: api}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName *string `json:"display_name"`
}

// Geocode returns the first match for location. An empty result set is
// ErrLocationNotFound.
func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (Place, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []nominatimResult
	if err := g.api.getJSON(ctx, params, &results); err != nil {
		return Place{}, err
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim: parse latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim: parse longitude %q: %w", first.Lon, err)
	}

	display := location
	if first.DisplayName != nil {
		display = *first.DisplayName
	}
	return Place{Lat: lat, Lon: lon, DisplayName: display}, nil
}
