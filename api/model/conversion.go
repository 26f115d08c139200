package model

import (
	"github.com/a-bouts/conversion/conversion"
	"github.com/a-bouts/conversion/latlon"
)

type GisToRadar struct {
	From latlon.LatLon `json:"from"`
	To   latlon.LatLon `json:"to"`
}

type RadarToGis struct {
	From     latlon.LatLon `json:"from"`
	Bearing  float64       `json:"bearing"`
	Distance float64       `json:"distance"`
}

func (r RadarToGis) Radar() conversion.Radar {
	return conversion.Radar{Bearing: r.Bearing, Distance: r.Distance}
}

type Error struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type Stats struct {
	Conversions uint64 `json:"conversions"`
	Invalid     uint64 `json:"invalid"`
	Defects     uint64 `json:"defects"`
}
