// Package hospitals holds hospital metadata keyed by name.
package hospitals

// Record is the metadata kept for one hospital.
//
// Rating is the loaded rating until the first review arrives; from then on it
// is always TotalRating / NumReviews.
type Record struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	WorkingHours string  `json:"workingHours"`
	AverageFees  int     `json:"averageFees"`
	Address      string  `json:"address"`
	NumReviews   int     `json:"numReviews"`
	TotalRating  float64 `json:"totalRating"`
}

const (
	MinRating = 1
	MaxRating = 5
)
