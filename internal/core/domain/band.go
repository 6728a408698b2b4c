package domain

import "math"

// Band is a performance category derived from an achievement percentage.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

// Threshold ladder shared by every place that colours or filters by band.
const (
	ExcellentThreshold = 90.0
	GoodThreshold      = 70.0
	FairThreshold      = 50.0
)

// Bands lists the categories from best to worst.
var Bands = []Band{BandExcellent, BandGood, BandFair, BandPoor}

var bandColors = map[Band]string{
	BandExcellent: "#11998e",
	BandGood:      "#667eea",
	BandFair:      "#fcb69f",
	BandPoor:      "#fa709a",
}

var bandLabels = map[Band]string{
	BandExcellent: "Excellent",
	BandGood:      "Good",
	BandFair:      "Fair",
	BandPoor:      "Poor",
}

// Classify maps a percentage onto the threshold ladder.
func Classify(percent float64) Band {
	switch {
	case percent >= ExcellentThreshold:
		return BandExcellent
	case percent >= GoodThreshold:
		return BandGood
	case percent >= FairThreshold:
		return BandFair
	default:
		return BandPoor
	}
}

// IsValid reports whether b is one of the four known bands.
func (b Band) IsValid() bool {
	_, ok := bandColors[b]
	return ok
}

// Color returns the chart colour for the band.
func (b Band) Color() string {
	return bandColors[b]
}

// Label returns the human readable band name.
func (b Band) Label() string {
	return bandLabels[b]
}

// ClampPercent bounds v to [0, 100]. Non-finite values become 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
