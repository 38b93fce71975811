package domain

import (
	"fmt"
	"strings"
)

// Condition is the weather theme shown by the dashboard.
type Condition string

const (
	Sunny            Condition = "Sunny"
	Cloudy           Condition = "Cloudy"
	Rainy            Condition = "Rainy"
	Snowy            Condition = "Snowy"
	DefaultCondition Condition = "Default"
)

// InitialCondition is the theme shown before any weather is known.
const InitialCondition = Rainy

// Conditions lists every theme in display order.
var Conditions = []Condition{Sunny, Cloudy, Rainy, Snowy, DefaultCondition}

// Classify maps an OpenWeather condition code to a theme.
// Fog (7xx) and clear sky both land on Sunny since only four themes have art.
func Classify(code int) Condition {
	if code >= 200 && code < 300 {
		return Rainy
	}
	if code >= 300 && code < 600 {
		return Rainy
	}
	if code >= 600 && code < 700 {
		return Snowy
	}
	if code > 800 {
		return Cloudy
	}
	return Sunny
}

// ParseCondition resolves a condition name, ignoring case.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	for _, c := range Conditions {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown weather condition %q", s)
}

// Icon is the glyph drawn next to the temperature.
type Icon string

const (
	IconThunderstorm Icon = "thunderstorm"
	IconRain         Icon = "rain"
	IconSnow         Icon = "snow"
	IconFog          Icon = "fog"
	IconClear        Icon = "clear"
	IconCloudy       Icon = "cloudy"
	IconUnknown      Icon = "unknown"
)

// IconFor maps an OpenWeather condition code to an icon. Unlike Classify it
// keeps fog and clear sky apart.
func IconFor(code int) Icon {
	switch {
	case code >= 200 && code < 300:
		return IconThunderstorm
	case code >= 300 && code < 600:
		return IconRain
	case code >= 600 && code < 700:
		return IconSnow
	case code >= 700 && code < 800:
		return IconFog
	case code == 800:
		return IconClear
	case code > 800:
		return IconCloudy
	default:
		return IconUnknown
	}
}
