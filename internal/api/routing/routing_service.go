package routing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/largekite/travel-planner/internal/api/geo"
	"github.com/largekite/travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const (
	// DefaultMaxMinutes is used when a proximity query carries no budget.
	DefaultMaxMinutes = 15
	// MaxBudgetMinutes caps the budget a single query may ask for.
	MaxBudgetMinutes = 60
	// DefaultResultLimit caps a proximity result when no limit is given.
	DefaultResultLimit = 20
)

// Service defines the geo-proximity and route-optimization contract. All
// methods are pure and total: degenerate input yields an empty or
// pass-through result, never an error.
type Service interface {
	FilterByProximity(ctx context.Context, params ProximityParams) ProximityResult
	OptimizeRoute(ctx context.Context, venues []types.Venue, start *types.Coordinate, mode types.TravelMode) types.RouteOptimization
	EvaluateRoute(ctx context.Context, venues []types.Venue, start *types.Coordinate, mode types.TravelMode) types.RouteTotals
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// FilterByProximity keeps only the venues reachable from the center within
// the time budget, annotated with their estimated minutes, sorted
// closest-first and capped to the limit. Without a center the filter is a
// pass-through of the first N venues: "near me" is meaningless unanchored.
func (s *ServiceImpl) FilterByProximity(ctx context.Context, params ProximityParams) ProximityResult {
	_, span := otel.Tracer("RoutingService").Start(ctx, "FilterByProximity", trace.WithAttributes(
		attribute.Int("venues.count", len(params.Venues)),
		attribute.String("mode", string(params.Mode)),
	))
	defer span.End()

	maxMinutes := clampBudget(params.MaxMinutes)
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	radius := geo.SearchRadiusMeters(params.Mode, maxMinutes)

	if params.Center == nil || !params.Center.Valid() {
		s.logger.DebugContext(ctx, "Proximity filter without center, passing venues through",
			slog.Int("count", len(params.Venues)))
		span.AddEvent("no center, pass-through")
		passthrough := make([]types.AnnotatedVenue, 0, limit)
		for _, v := range params.Venues {
			if len(passthrough) == limit {
				break
			}
			passthrough = append(passthrough, types.AnnotatedVenue{Venue: v})
		}
		return ProximityResult{Venues: passthrough, RadiusMeters: radius}
	}

	annotated := make([]types.AnnotatedVenue, 0, len(params.Venues))
	for _, v := range params.Venues {
		pos := v.Position()
		if pos == nil {
			continue
		}
		eta := geo.EtaMinutes(params.Mode, geo.DistanceKm(*params.Center, *pos))
		if eta > maxMinutes {
			continue
		}
		annotated = append(annotated, types.AnnotatedVenue{
			Venue:            v,
			EstimatedMinutes: eta,
			Meta:             fmt.Sprintf("%d min %s", eta, params.Mode),
		})
	}

	// Stable keeps input order for equal estimates.
	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].EstimatedMinutes < annotated[j].EstimatedMinutes
	})
	if len(annotated) > limit {
		annotated = annotated[:limit]
	}

	span.SetAttributes(attribute.Int("result.count", len(annotated)))
	span.SetStatus(codes.Ok, "Venues filtered")
	return ProximityResult{Venues: annotated, RadiusMeters: radius}
}

// OptimizeRoute reorders the venues into an approximately shorter loop using
// a greedy nearest-neighbor scan, optionally anchored at a start point.
// Venues without coordinates are excluded from the optimized sequence; with
// two or fewer usable stops the original order comes back with zero totals.
func (s *ServiceImpl) OptimizeRoute(ctx context.Context, venues []types.Venue, start *types.Coordinate, mode types.TravelMode) types.RouteOptimization {
	_, span := otel.Tracer("RoutingService").Start(ctx, "OptimizeRoute", trace.WithAttributes(
		attribute.Int("venues.count", len(venues)),
		attribute.String("mode", string(mode)),
		attribute.Bool("anchored", start != nil),
	))
	defer span.End()

	valid, positions := validStops(venues)
	if len(valid) <= 2 {
		span.AddEvent("too few usable stops, returning original order")
		return types.RouteOptimization{OriginalOrder: venues, OptimizedOrder: venues}
	}
	anchor := validStart(start)

	// Index-based visited set instead of list splicing keeps the scan
	// deterministic and avoids repeated O(n) removals.
	visited := make([]bool, len(valid))
	ordered := make([]types.Venue, 0, len(valid))
	remaining := len(valid)

	var current types.Coordinate
	if anchor != nil {
		current = *anchor
	} else {
		ordered = append(ordered, valid[0])
		current = positions[0]
		visited[0] = true
		remaining--
	}

	for remaining > 0 {
		best := -1
		bestDist := math.MaxFloat64
		for i := range valid {
			if visited[i] {
				continue
			}
			// Strict < keeps the first-found venue on ties.
			if d := geo.DistanceKm(current, positions[i]); d < bestDist {
				bestDist = d
				best = i
			}
		}
		ordered = append(ordered, valid[best])
		current = positions[best]
		visited[best] = true
		remaining--
	}

	totals := accumulateLegs(anchor, ordered, mode)
	s.logger.DebugContext(ctx, "Route optimized",
		slog.Int("stops", len(ordered)),
		slog.Int("total_minutes", totals.TotalTimeMinutes),
		slog.Float64("total_km", totals.TotalDistanceKm))
	span.SetStatus(codes.Ok, "Route optimized")

	return types.RouteOptimization{
		OriginalOrder:  venues,
		OptimizedOrder: ordered,
		RouteTotals:    totals,
	}
}

// EvaluateRoute computes the leg-by-leg totals of the given order, including
// the anchor leg when a start point is provided. It shares the optimizer's
// accumulation so "as selected" and "optimized" totals are always comparable.
func (s *ServiceImpl) EvaluateRoute(ctx context.Context, venues []types.Venue, start *types.Coordinate, mode types.TravelMode) types.RouteTotals {
	_, span := otel.Tracer("RoutingService").Start(ctx, "EvaluateRoute", trace.WithAttributes(
		attribute.Int("venues.count", len(venues)),
		attribute.String("mode", string(mode)),
	))
	defer span.End()

	valid, _ := validStops(venues)
	if len(valid) == 0 {
		return types.RouteTotals{}
	}
	totals := accumulateLegs(validStart(start), valid, mode)
	span.SetStatus(codes.Ok, "Route evaluated")
	return totals
}

// accumulateLegs sums distance and ETA over an ordered sequence of stops,
// with an optional leading anchor leg. Every stop must have a position.
func accumulateLegs(start *types.Coordinate, stops []types.Venue, mode types.TravelMode) types.RouteTotals {
	if len(stops) == 0 {
		return types.RouteTotals{}
	}

	var totalKm float64
	var totalMinutes int

	var current types.Coordinate
	rest := stops
	if start != nil {
		current = *start
	} else {
		current = *stops[0].Position()
		rest = stops[1:]
	}

	for _, stop := range rest {
		d := geo.DistanceKm(current, *stop.Position())
		totalKm += d
		totalMinutes += geo.EtaMinutes(mode, d)
		current = *stop.Position()
	}

	return types.RouteTotals{
		TotalTimeMinutes: totalMinutes,
		TotalDistanceKm:  math.Round(totalKm*100) / 100,
	}
}

// validStops returns the venues with usable coordinates, in input order,
// alongside their positions.
func validStops(venues []types.Venue) ([]types.Venue, []types.Coordinate) {
	valid := make([]types.Venue, 0, len(venues))
	positions := make([]types.Coordinate, 0, len(venues))
	for _, v := range venues {
		if pos := v.Position(); pos != nil {
			valid = append(valid, v)
			positions = append(positions, *pos)
		}
	}
	return valid, positions
}

func validStart(start *types.Coordinate) *types.Coordinate {
	if start == nil || !start.Valid() {
		return nil
	}
	return start
}

func clampBudget(maxMinutes int) int {
	if maxMinutes <= 0 {
		return DefaultMaxMinutes
	}
	if maxMinutes > MaxBudgetMinutes {
		return MaxBudgetMinutes
	}
	return maxMinutes
}
