package fiber

import "errors"

var (
	// ErrUnknownDesign is returned when a design name has no entry in Variants.
	ErrUnknownDesign = errors.New("fiber: design not implemented")

	// ErrGeometryInfeasible is returned when resolved parameters cannot form
	// a valid cross section: bad embedding, non-positive sizes, or
	// overlapping capillaries.
	ErrGeometryInfeasible = errors.New("fiber: geometry infeasible")
)
