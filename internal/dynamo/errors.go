package dynamo

import "errors"

// Domain errors shared across packages.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrUnknownDimension indicates a dimension name outside the mappable set.
	ErrUnknownDimension = errors.New("dynamo: unknown dimension")

	// ErrUnmappedDimension indicates a dimension the chosen system does not use.
	ErrUnmappedDimension = errors.New("dynamo: dimension not used by system")
)
