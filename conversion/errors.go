package conversion

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvariantViolation is matched by every *InvariantError. Seeing it
	// means the model produced an out of range value from valid inputs.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// InputError reports the first input value found outside its domain.
type InputError struct {
	Field string // lon1, lat1, lon2, lat2, distance or bearing
	Desc  string
	Value float64
	Min   float64
	Max   float64
}

func (e *InputError) Error() string {
	if math.IsInf(e.Max, 1) {
		if math.IsInf(e.Value, 0) {
			return fmt.Sprintf("the %s should be finite, got %v", e.Desc, e.Value)
		}
		return fmt.Sprintf("the %s should be positive, got %v", e.Desc, e.Value)
	}
	return fmt.Sprintf("the %s should be between %v° and %v°, got %v", e.Desc, e.Min, e.Max, e.Value)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// InvariantError reports a computed value outside its expected domain.
type InvariantError struct {
	Field string
	Desc  string
	Value float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("unexpected result for the %s: %v", e.Desc, e.Value)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// bound is a closed interval check. NaN never passes.
type bound struct {
	field string
	desc  string
	min   float64
	max   float64
}

var (
	lon1Bound     = bound{"lon1", "longitude of the starting point", -180, 180}
	lat1Bound     = bound{"lat1", "latitude of the starting point", -90, 90}
	lon2Bound     = bound{"lon2", "longitude of the end point", -180, 180}
	lat2Bound     = bound{"lat2", "latitude of the end point", -90, 90}
	distanceBound = bound{"distance", "distance between starting and end points", 0, math.Inf(1)}
	bearingBound  = bound{"bearing", "initial bearing", 0, 360}
)

func (b bound) contains(v float64) bool {
	return b.min <= v && v <= b.max
}

func (b bound) input(v float64) error {
	// an infinite distance would turn every trigonometric term into NaN
	if b.contains(v) && !math.IsInf(v, 0) {
		return nil
	}
	return &InputError{Field: b.field, Desc: b.desc, Value: v, Min: b.min, Max: b.max}
}

func (b bound) result(v float64) error {
	if b.contains(v) && !math.IsInf(v, 0) {
		return nil
	}
	return &InvariantError{Field: b.field, Desc: b.desc, Value: v}
}
