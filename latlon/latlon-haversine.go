package latlon

import "math"

// LatLonHaversine computes on a sphere of radius R using the haversine
// distance and the spherical direct formula.
type LatLonHaversine struct{}

var _ LatLonInterface = LatLonHaversine{}

func (LatLonHaversine) initialBearingTo(φ1, φ2, Δλ float64) float64 {
	x := math.Sin(Δλ) * math.Cos(φ2)
	y := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	θ := math.Atan2(x, y)

	return wrap360(toDegrees(θ))
}

func (LatLonHaversine) angularDistance(φ1, φ2, Δλ float64) float64 {
	Δφ := φ2 - φ1

	// square of half the chord length between the points
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	// rounding can push nearly antipodal points just above 1
	a = math.Min(a, 1)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceTo returns the great-circle distance in meters.
func (hav LatLonHaversine) DistanceTo(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lon) - toRadians(from.Lon)

	return R * hav.angularDistance(φ1, φ2, Δλ)
}

// BearingTo returns the initial bearing in degrees, in [0, 360). Coincident
// points give 0.
func (hav LatLonHaversine) BearingTo(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lon) - toRadians(from.Lon)

	return hav.initialBearingTo(φ1, φ2, Δλ)
}

func (hav LatLonHaversine) DistanceAndBearingTo(from, to LatLon) (float64, float64) {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lon) - toRadians(from.Lon)

	return R * hav.angularDistance(φ1, φ2, Δλ), hav.initialBearingTo(φ1, φ2, Δλ)
}

// Destination follows the great circle leaving from on the initial bearing
// (degrees) for distance meters.
func (LatLonHaversine) Destination(from LatLon, bearing float64, distance float64) LatLon {
	φ1 := toRadians(from.Lat)
	θ := toRadians(bearing)

	δ := distance / R

	sinφ2 := math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ)
	// rounding can push a path ending on a pole just past ±1
	φ2 := math.Asin(math.Max(-1, math.Min(1, sinφ2)))
	Δλ := math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	// the longitude offset is added in degrees so a null offset leaves from.Lon as is
	return LatLon{Lat: toDegrees(φ2), Lon: wrap180(from.Lon + toDegrees(Δλ))}
}
