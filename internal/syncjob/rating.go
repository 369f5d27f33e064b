package syncjob

import "math"

// ratingThresholds are the exclusive upper bounds of popularity for ratings
// 0 through 4. Anything at or above the last bound rates 5.
var ratingThresholds = [...]float64{16.66, 33.33, 50, 66.66, 83.33}

// FromPopularity maps a 0-100 popularity score onto a 0-5 star rating.
func FromPopularity(popularity float64) int {
	for rating, bound := range ratingThresholds {
		if popularity < bound {
			return rating
		}
	}
	return len(ratingThresholds)
}

// MatchPercentage is found/total as a percentage rounded to two decimals,
// or 0 for an empty run.
func MatchPercentage(found, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(found)/float64(total)*100*100) / 100
}
