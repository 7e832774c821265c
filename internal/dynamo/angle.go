package dynamo

import "math"

// CircDiff returns the shortest signed angular difference a-b,
// normalized into (-pi, pi]. Every angle comparison in the repository
// goes through here; raw subtraction misreads trajectories that have
// wrapped past the vertical a different number of times.
func CircDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d <= -math.Pi {
		d += 2 * math.Pi
	} else if d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// WrapAngle normalizes a into (-pi, pi].
func WrapAngle(a float64) float64 {
	return CircDiff(a, 0)
}

// Separation measures the distance between two states of sys, using the
// circular metric on periodic coordinates and raw differences elsewhere.
func Separation(sys System, a, b State) float64 {
	sum := 0.0
	for i := range a {
		var d float64
		if sys.Periodic(i) {
			d = CircDiff(a[i], b[i])
		} else {
			d = a[i] - b[i]
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}
