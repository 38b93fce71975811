package domain

// Animation is the particle layer drawn over the background.
type Animation string

const (
	AnimationNone Animation = "none"
	AnimationRain Animation = "rain"
	AnimationSnow Animation = "snow"
)

// Particles describes how an animation is spawned. Durations are in seconds.
type Particles struct {
	Count       int     `json:"count"`
	MinDuration float64 `json:"minDuration"`
	MaxDuration float64 `json:"maxDuration"`
	MaxDelay    float64 `json:"maxDelay"`
}

// Theme is everything the page needs to paint for a condition.
type Theme struct {
	Condition  Condition  `json:"condition"`
	Background string     `json:"background"`
	Animation  Animation  `json:"animation"`
	Particles  *Particles `json:"particles,omitempty"`
}

var backgrounds = map[Condition]string{
	DefaultCondition: "https://images.unsplash.com/photo-1572966101025-e199cab72196?q=80&w=1169&auto=format&fit=crop",
	Sunny:            "https://images.unsplash.com/photo-1534030665069-90e016e995e5?q=80&w=1170&auto=format&fit=crop",
	Cloudy:           "https://images.unsplash.com/photo-1501630834273-4b5604d2ee31?q=80&w=1170&auto=format&fit=crop",
	Rainy:            "https://images.unsplash.com/photo-1721959524958-af4048aa81b4?q=80&w=1170&auto=format&fit=crop",
	Snowy:            "https://images.unsplash.com/photo-1671485928775-6d5fee2d6f29?q=80&w=1172&auto=format&fit=crop",
}

var (
	rainParticles = Particles{Count: 100, MinDuration: 0.2, MaxDuration: 0.5, MaxDelay: 5}
	snowParticles = Particles{Count: 100, MinDuration: 5, MaxDuration: 10, MaxDelay: 10}
)

// ThemeFor picks the background and animation for a condition. Unknown
// conditions get the default background and no animation.
func ThemeFor(c Condition) Theme {
	bg, ok := backgrounds[c]
	if !ok {
		bg = backgrounds[DefaultCondition]
	}
	t := Theme{Condition: c, Background: bg, Animation: AnimationNone}
	switch c {
	case Rainy:
		p := rainParticles
		t.Animation, t.Particles = AnimationRain, &p
	case Snowy:
		p := snowParticles
		t.Animation, t.Particles = AnimationSnow, &p
	}
	return t
}
