package suggest

import (
	"strings"

	"github.com/kjstillabower/outfit-guide-service/internal/models"
)

var (
	RainGear        = models.Suggestion{Title: "Rain Gear", Description: "Waterproof jacket and umbrella"}
	WarmWinterCoat  = models.Suggestion{Title: "Warm Winter Coat", Description: "Insulated coat, gloves, and hat"}
	LightClothing   = models.Suggestion{Title: "Light Clothing", Description: "Breathable cotton or linen clothes"}
	MildWeather     = models.Suggestion{Title: "Mild Weather", Description: "Light layers — t-shirt with a thin jacket"}
	CoolWeather     = models.Suggestion{Title: "Cool Weather", Description: "Sweater or light jacket"}
	ColdWeather     = models.Suggestion{Title: "Cold Weather", Description: "Heavy coat, scarf, gloves"}
	SunProtection   = models.Suggestion{Title: "Sun Protection", Description: "Sunglasses and sunscreen"}
	sunProtectionAt = 25.0
)

// FromWeather derives clothing suggestions from a normalized record.
// Condition checks come first, then exactly one temperature band, then
// sun protection when it is hot and no earlier description mentions rain.
func FromWeather(w models.WeatherRecord) []models.Suggestion {
	t := w.Temperature
	cond := strings.ToLower(w.Condition)

	out := make([]models.Suggestion, 0, 4)
	if strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle") {
		out = append(out, RainGear)
	}
	if strings.Contains(cond, "snow") {
		out = append(out, WarmWinterCoat)
	}
	out = append(out, band(t))

	if !anyDescriptionContains(out, "rain") && t >= sunProtectionAt {
		out = append(out, SunProtection)
	}
	return out
}

func band(t float64) models.Suggestion {
	switch {
	case t >= 30:
		return LightClothing
	case t >= 20:
		return MildWeather
	case t >= 10:
		return CoolWeather
	default:
		return ColdWeather
	}
}

// anyDescriptionContains matches descriptions, not the condition text.
func anyDescriptionContains(list []models.Suggestion, substr string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.Description), substr) {
			return true
		}
	}
	return false
}
