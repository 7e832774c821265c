package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chaoscope/internal/diverge"
)

// DivergenceHistogram bins the onset chunks of a threshold or
// divergence-time field. Pixels that never crossed land in Never,
// non-finite pixels in Invalid.
type DivergenceHistogram struct {
	Dividers []float64
	Counts   []float64
	Latched  int
	Never    int
	Invalid  int
}

// HistogramDivergence reads channel 0 (the onset chunk, negative when
// the pixel never crossed) and channel 3 (validity) of every pixel.
func HistogramDivergence(f *diverge.Field, bins int) DivergenceHistogram {
	if bins < 1 {
		bins = 1
	}

	var h DivergenceHistogram
	vals := make([]float64, 0, f.Res*f.Res)
	for py := 0; py < f.Res; py++ {
		for px := 0; px < f.Res; px++ {
			if f.Value(px, py, 3) == 0 {
				h.Invalid++
				continue
			}
			onset := float64(f.Value(px, py, 0))
			if onset < 0 {
				h.Never++
				continue
			}
			vals = append(vals, onset)
		}
	}
	h.Latched = len(vals)
	if len(vals) == 0 {
		return h
	}

	sort.Float64s(vals)
	lo, hi := vals[0], vals[len(vals)-1]
	if hi <= lo {
		hi = lo + 1
	}
	// Nudge the top divider so the maximum falls inside the last bin.
	hi += (hi - lo) * 1e-9

	h.Dividers = make([]float64, bins+1)
	for i := range h.Dividers {
		h.Dividers[i] = lo + (hi-lo)*float64(i)/float64(bins)
	}
	h.Counts = stat.Histogram(nil, h.Dividers, vals, nil)
	return h
}
