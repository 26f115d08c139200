package latlon

import "math"

const π = math.Pi

// R is the mean Earth radius in meters.
const R = 6371e3

type LatLonInterface interface {
	DistanceTo(from, to LatLon) float64
	BearingTo(from, to LatLon) float64
	DistanceAndBearingTo(from, to LatLon) (float64, float64)
	Destination(from LatLon, bearing float64, distance float64) LatLon
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

// wrap360 brings d into [0, 360).
func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d = math.Mod(d+360.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

// wrap180 brings d into [-180, 180]. Values already in range are untouched.
func wrap180(d float64) float64 {
	if -180.0 <= d && d <= 180.0 {
		return d
	}
	d = math.Mod(d+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d - 180.0
}
