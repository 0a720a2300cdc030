package models

// WeatherRecord is the provider-independent view of current conditions.
// Temperature and Condition are always set; the pointer fields are nil when
// the provider does not report them and serialize as null.
type WeatherRecord struct {
	Location    string   `json:"location"`
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition"`
	Humidity    *int     `json:"humidity"`
	WindSpeed   *float64 `json:"windSpeed"`
	FeelsLike   *float64 `json:"feelsLike"`
}

type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// WeatherResponse is the body of a successful GET /api/weather.
type WeatherResponse struct {
	Weather     WeatherRecord `json:"weather"`
	Suggestions []Suggestion  `json:"suggestions"`
}
