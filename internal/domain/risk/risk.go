// Package risk holds the rating arithmetic and severity banding shared by
// the intake pipeline and the report surfaces.
package risk

// Band classifies a risk rating into one of four severity levels. Unscored
// marks ratings of 0, which mean likelihood/severity were unavailable; it is
// deliberately distinct from Low.
type Band int

const (
	Unscored Band = iota
	Low
	Medium
	High
	Critical
)

// Rating is the product of likelihood and severity, both expected in [1,5].
// A 0 in either input yields 0, the unscored case.
func Rating(likelihood, severity int) int {
	return likelihood * severity
}

// BandFor buckets a rating into contiguous, non-overlapping bands:
// [1,4] Low, [5,9] Medium, [10,15] High, [16,∞) Critical.
func BandFor(rating int) Band {
	switch {
	case rating <= 0:
		return Unscored
	case rating <= 4:
		return Low
	case rating <= 9:
		return Medium
	case rating <= 15:
		return High
	default:
		return Critical
	}
}

func (b Band) String() string {
	switch b {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	case Critical:
		return "Critical"
	default:
		return "Unscored"
	}
}
