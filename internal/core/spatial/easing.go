package spatial

// EaseOutQuadratic decelerates towards t=1.
func EaseOutQuadratic(t float64) float64 {
	return t * (2 - t)
}

// Clamp01 limits t to [0, 1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
