package dynamo

import "fmt"

// Dimension names one of the eight quantities an image axis can drive.
// The first four are state coordinates, the last four are parameters;
// gravity is configurable but never mapped. Values index basis arrays
// directly, so axis lookups stay O(1) everywhere.
type Dimension uint8

const (
	DimTheta1 Dimension = iota
	DimTheta2
	DimOmega1
	DimOmega2
	DimL1
	DimL2
	DimM1
	DimM2

	DimCount = 8
)

var dimNames = [DimCount]string{
	"theta1", "theta2", "omega1", "omega2", "l1", "l2", "m1", "m2",
}

func (d Dimension) String() string {
	if int(d) < len(dimNames) {
		return dimNames[d]
	}
	return fmt.Sprintf("dimension(%d)", uint8(d))
}

// IsParam reports whether d addresses a parameter slot rather than a
// state coordinate.
func (d Dimension) IsParam() bool {
	return d >= DimL1 && d <= DimM2
}

// ParseDimension resolves a config name like "theta1" or "m2".
func ParseDimension(name string) (Dimension, error) {
	for i, n := range dimNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// DimensionNames returns the accepted config names in slot order.
func DimensionNames() []string {
	names := make([]string, DimCount)
	copy(names, dimNames[:])
	return names
}
