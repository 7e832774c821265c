package mapping

// Pixel-to-unit-square conversion. Row 0 is the bottom of the map and
// v increases upward; every consumer (tiles, probes, zoom rectangles,
// image encoders) goes through these two functions rather than
// flipping axes locally.

// PixelCenter returns the unit coordinates of the center of pixel
// (px, py) on a res-by-res grid.
func PixelCenter(px, py, res int) (u, v float64) {
	u = (float64(px) + 0.5) / float64(res)
	v = (float64(py) + 0.5) / float64(res)
	return u, v
}

// Locate returns the pixel containing unit point (u, v), clamped to
// the grid so edge coordinates stay addressable.
func Locate(u, v float64, res int) (px, py int) {
	px = clampIndex(int(u*float64(res)), res)
	py = clampIndex(int(v*float64(res)), res)
	return px, py
}

func clampIndex(i, res int) int {
	if i < 0 {
		return 0
	}
	if i >= res {
		return res - 1
	}
	return i
}
