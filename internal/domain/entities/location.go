// Package entities defines the core domain models for the map-matching
// service. These structs represent the business concepts (Location, Edge)
// and live in the innermost layer of the architecture — they have no
// dependencies on HTTP, the grid index, or external services.
//
// Go Learning Note — "internal/" directory:
// Packages under internal/ cannot be imported by code outside this module. Go
// enforces this at the compiler level. This is how Go provides encapsulation
// at the package level — it prevents external code from depending on your
// internal implementation details.
package entities

import "gridmatch/internal/geom"

// StopType is a typed string enum classifying a routing stop. It determines
// whether a route may double back through the point to find the most
// efficient path.
//
// Go Learning Note — Type Aliases for Enums:
// Go doesn't have a native enum keyword. The idiomatic pattern is a named
// type (usually based on string or int) with constants of that type.
// String-based enums are preferred when the value will be serialized to
// JSON, because they're human-readable on the wire.
type StopType string

const (
	// StopTypeBreak is a hard stop: the route must arrive and depart
	// without revisiting the point.
	StopTypeBreak StopType = "break"
	// StopTypeThrough is a via point the route may pass through in either
	// direction, doubling back if that yields a shorter path.
	StopTypeThrough StopType = "through"
)

// Location is input from the outside world: a point the route must pass
// through, as supplied by the caller before it has been matched to the road
// graph. The candidate search turns a Location into a query rectangle and
// attaches the matched edges back to it — the spatial index itself never
// sees this type.
//
// The address fields are free-form display strings carried along for the
// caller's benefit.
// TODO: the street/city/state/zip split is US-centric; restructure once a
// second address format actually shows up.
type Location struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	StopType  StopType `json:"stop_type"`

	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`

	// Heading is the direction of travel in degrees clockwise from north,
	// when the caller knows it (e.g. from a GPS trace). Nil when unknown.
	Heading *float64 `json:"heading,omitempty"`
}

// NewLocation creates a Location value with the default stop type (a hard
// stop).
func NewLocation(lat, lng float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lng,
		StopType:  StopTypeBreak,
	}
}

// Point returns the location's coordinate as a planar point, longitude as x
// and latitude as y.
func (l Location) Point() geom.Point {
	return geom.Point{X: l.Longitude, Y: l.Latitude}
}
