// Package conversion converts between GIS coordinates (longitude, latitude)
// and radar coordinates (bearing, distance from a reference point) on a
// spherical Earth of radius latlon.R.
//
// The formulas are the spherical ones described at
// http://www.movable-type.co.uk/scripts/latlong.html.
package conversion

import (
	"github.com/a-bouts/conversion/latlon"
)

// Radar locates a point relative to a reference point.
type Radar struct {
	Bearing  float64 `json:"bearing"`  // degrees clockwise from true north, [0, 360]
	Distance float64 `json:"distance"` // meters along the great circle
}

var sphere latlon.LatLonInterface = latlon.LatLonHaversine{}

// RadarToGis returns the point reached from `from` following r.Bearing for
// r.Distance meters.
//
// Inputs are checked in this order: from.Lon, from.Lat, r.Distance,
// r.Bearing. The first value out of range is returned as an *InputError.
func RadarToGis(from latlon.LatLon, r Radar) (latlon.LatLon, error) {
	if err := lon1Bound.input(from.Lon); err != nil {
		return latlon.LatLon{}, err
	}
	if err := lat1Bound.input(from.Lat); err != nil {
		return latlon.LatLon{}, err
	}
	if err := distanceBound.input(r.Distance); err != nil {
		return latlon.LatLon{}, err
	}
	if err := bearingBound.input(r.Bearing); err != nil {
		return latlon.LatLon{}, err
	}

	to := sphere.Destination(from, r.Bearing, r.Distance)

	if err := lon2Bound.result(to.Lon); err != nil {
		return latlon.LatLon{}, err
	}
	if err := lat2Bound.result(to.Lat); err != nil {
		return latlon.LatLon{}, err
	}
	return to, nil
}

// GisToRadar returns the initial bearing and the great-circle distance from
// `from` to `to`.
//
// Inputs are checked in this order: from.Lon, from.Lat, to.Lon, to.Lat.
func GisToRadar(from, to latlon.LatLon) (Radar, error) {
	if err := lon1Bound.input(from.Lon); err != nil {
		return Radar{}, err
	}
	if err := lat1Bound.input(from.Lat); err != nil {
		return Radar{}, err
	}
	if err := lon2Bound.input(to.Lon); err != nil {
		return Radar{}, err
	}
	if err := lat2Bound.input(to.Lat); err != nil {
		return Radar{}, err
	}

	d, b := sphere.DistanceAndBearingTo(from, to)

	if err := distanceBound.result(d); err != nil {
		return Radar{}, err
	}
	if err := bearingBound.result(b); err != nil {
		return Radar{}, err
	}
	return Radar{Bearing: b, Distance: d}, nil
}
