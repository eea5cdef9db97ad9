package session

import "math"

// Conversion factors for derived metrics
const (
	MetersPerStep   = 0.7
	CaloriesPerStep = 0.04
)

// Totals are the figures derived from a step count.
type Totals struct {
	Steps      int
	DistanceKm float64
	Calories   int
}

// DistanceKm converts steps to kilometres, rounded to two decimals.
func DistanceKm(steps int) float64 {
	return roundTo(float64(steps)*MetersPerStep/1000, 2)
}

// Calories converts steps to whole kilocalories.
func Calories(steps int) int {
	return int(math.Round(float64(steps) * CaloriesPerStep))
}

// TotalsFor derives distance and calories for steps.
func TotalsFor(steps int) Totals {
	return Totals{
		Steps:      steps,
		DistanceKm: DistanceKm(steps),
		Calories:   Calories(steps),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
