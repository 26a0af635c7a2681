package battlesim

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	progressInterval        = time.Second
)

// Meal generation ranges.
const (
	minPrice   = 1.0
	priceRange = 49.0
)

// Cuisines picked for generated meals.
var cuisines = []string{
	"Italian", "Japanese", "Mexican", "Indian", "French",
	"Thai", "Greek", "Korean", "Ethiopian", "Peruvian",
}

var difficulties = []string{"LOW", "MED", "HIGH"}
