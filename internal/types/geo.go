package types

import "encoding/json"

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies inside the WGS84 bounds.
// A zero-value Coordinate (0,0) is technically valid; absence is modeled
// with *Coordinate == nil, not with the zero value.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// TravelMode selects the nominal speed used for ETA estimates.
type TravelMode string

const (
	TravelModeWalk  TravelMode = "walk"
	TravelModeDrive TravelMode = "drive"
)

// ParseTravelMode maps a wire string to a TravelMode. Unknown values fall
// back to walking, keeping the routing functions total.
func ParseTravelMode(s string) TravelMode {
	if TravelMode(s) == TravelModeDrive {
		return TravelModeDrive
	}
	return TravelModeWalk
}

// Venue is a candidate stop: a display name, an optional position, and an
// opaque metadata bag the routing core passes through unmodified. Names are
// not unique; identity is positional within a request.
type Venue struct {
	Name      string          `json:"name"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Position returns the venue's coordinate, or nil when either component is
// missing or out of range.
func (v Venue) Position() *Coordinate {
	if v.Latitude == nil || v.Longitude == nil {
		return nil
	}
	c := Coordinate{Latitude: *v.Latitude, Longitude: *v.Longitude}
	if !c.Valid() {
		return nil
	}
	return &c
}

// AnnotatedVenue is a Venue plus the travel-time estimate computed by the
// proximity filter. It exists only for the duration of one filter call.
type AnnotatedVenue struct {
	Venue
	EstimatedMinutes int    `json:"estimated_minutes"`
	Meta             string `json:"meta"`
}

// RouteTotals summarizes an ordered sequence of legs.
type RouteTotals struct {
	TotalTimeMinutes int     `json:"total_time_minutes"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
}

// RouteOptimization is the result of a nearest-neighbor reordering.
// OriginalOrder is the caller's input, unmodified; OptimizedOrder contains
// exactly the valid-coordinate subset of the input.
type RouteOptimization struct {
	OriginalOrder  []Venue `json:"original_order"`
	OptimizedOrder []Venue `json:"optimized_order"`
	RouteTotals
}
