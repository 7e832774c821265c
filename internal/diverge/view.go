package diverge

import "fmt"

// View selects which per-pixel record a field carries. Records are
// always four float32 values and channel 0 is the display value:
//
//	instant      ftle of last chunk, max log growth, mean log growth, valid
//	accumulated  running mean ftle, time-weighted sum, integrated time, valid
//	threshold    latch chunk index (-1), running ftle sum, latched flag, valid
//	bobdist      cumulative path length, last x, last y, valid
//	divtime      first-exceed chunk (-1), max separation, diverged flag, valid
//	position     the reference state coordinates themselves, zero padded
type View uint8

const (
	ViewInstant View = iota
	ViewAccumulated
	ViewThreshold
	ViewBobDist
	ViewDivTime
	ViewPosition

	viewCount
)

var viewNames = [viewCount]string{
	"instant", "accumulated", "threshold", "bobdist", "divtime", "position",
}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return fmt.Sprintf("view(%d)", uint8(v))
}

// ParseView resolves a config name like "accumulated".
func ParseView(name string) (View, error) {
	for i, n := range viewNames {
		if n == name {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("diverge: unknown view mode %q", name)
}

// Views lists every view in declaration order; frame snapshots store
// one field per entry.
func Views() []View {
	out := make([]View, viewCount)
	for i := range out {
		out[i] = View(i)
	}
	return out
}
