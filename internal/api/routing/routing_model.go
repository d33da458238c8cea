package routing

import "github.com/largekite/travel-planner/internal/types"

// ProximityParams bundles the inputs of a proximity query. Zero or negative
// MaxMinutes and Limit fall back to defaults inside the service.
type ProximityParams struct {
	Venues     []types.Venue
	Center     *types.Coordinate
	Mode       types.TravelMode
	MaxMinutes int
	Limit      int
}

// ProximityResult carries the ranked candidates plus the radius hint to use
// for the upstream provider query.
type ProximityResult struct {
	Venues       []types.AnnotatedVenue
	RadiusMeters int
}

type ProximityRequest struct {
	Venues     []types.Venue     `json:"venues"`
	Center     *types.Coordinate `json:"center,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	MaxMinutes int               `json:"max_minutes,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

type ProximityResponse struct {
	Venues       []types.AnnotatedVenue `json:"venues"`
	RadiusMeters int                    `json:"radius_meters"`
}

type OptimizeRequest struct {
	Venues []types.Venue     `json:"venues"`
	Start  *types.Coordinate `json:"start,omitempty"`
	Mode   string            `json:"mode,omitempty"`
}

// OptimizeResponse pairs the optimized route with the totals of the order as
// the user selected it, so the UI can show an honest before/after.
type OptimizeResponse struct {
	types.RouteOptimization
	AsSelected types.RouteTotals `json:"as_selected"`
}

type EvaluateRequest struct {
	Venues []types.Venue     `json:"venues"`
	Start  *types.Coordinate `json:"start,omitempty"`
	Mode   string            `json:"mode,omitempty"`
}
