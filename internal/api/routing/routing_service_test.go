package routing

import (
	"context"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/largekite/travel-planner/internal/api/geo"
	"github.com/largekite/travel-planner/internal/types"
)

func setupRoutingServiceTest() *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewServiceImpl(logger)
}

func venueAt(name string, lat, lng float64) types.Venue {
	return types.Venue{Name: name, Latitude: &lat, Longitude: &lng}
}

func venueWithoutCoords(name string) types.Venue {
	return types.Venue{Name: name}
}

func venueNames(venues []types.Venue) []string {
	names := make([]string, len(venues))
	for i, v := range venues {
		names[i] = v.Name
	}
	return names
}

func TestServiceImpl_FilterByProximity(t *testing.T) {
	service := setupRoutingServiceTest()
	ctx := context.Background()
	center := types.Coordinate{Latitude: 38.627, Longitude: -90.199}

	t.Run("includes near venue and excludes far venue", func(t *testing.T) {
		// ~0.5 km and ~5 km due north of the center. At 5 km/h a
		// 15 minute budget reaches ~1.25 km.
		near := venueAt("Cafe Around The Corner", 38.6315, -90.199)
		far := venueAt("Suburban Diner", 38.672, -90.199)

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{far, near},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
			Limit:      20,
		})

		require.Len(t, result.Venues, 1)
		assert.Equal(t, "Cafe Around The Corner", result.Venues[0].Name)
		assert.Equal(t, 6, result.Venues[0].EstimatedMinutes)
		assert.Equal(t, "6 min walk", result.Venues[0].Meta)
	})

	t.Run("every returned venue is within budget and sorted ascending", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("C", 38.633, -90.199),
			venueAt("A", 38.6275, -90.199),
			venueAt("B", 38.630, -90.199),
			venueAt("Too Far", 38.70, -90.199),
		}

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     venues,
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
			Limit:      20,
		})

		require.NotEmpty(t, result.Venues)
		for i, v := range result.Venues {
			assert.LessOrEqual(t, v.EstimatedMinutes, 15)
			if i > 0 {
				assert.GreaterOrEqual(t, v.EstimatedMinutes, result.Venues[i-1].EstimatedMinutes)
			}
		}
		assert.Equal(t, "A", result.Venues[0].Name)
	})

	t.Run("stable order for equal estimates", func(t *testing.T) {
		// Same point twice: identical estimates must keep input order.
		first := venueAt("First", 38.629, -90.199)
		second := venueAt("Second", 38.629, -90.199)

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{first, second},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 30,
		})

		require.Len(t, result.Venues, 2)
		assert.Equal(t, "First", result.Venues[0].Name)
		assert.Equal(t, "Second", result.Venues[1].Name)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		venues := make([]types.Venue, 0, 10)
		for i := 0; i < 10; i++ {
			venues = append(venues, venueAt("V", 38.628+float64(i)*0.0002, -90.199))
		}

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     venues,
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 30,
			Limit:      3,
		})

		assert.Len(t, result.Venues, 3)
	})

	t.Run("venue without coordinates is excluded, not an error", func(t *testing.T) {
		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{venueWithoutCoords("Mystery Spot"), venueAt("Known", 38.628, -90.199)},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
		})

		require.Len(t, result.Venues, 1)
		assert.Equal(t, "Known", result.Venues[0].Name)
	})

	t.Run("empty and all-coordinateless input yield empty result", func(t *testing.T) {
		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     nil,
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
		})
		assert.Empty(t, result.Venues)

		result = service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{venueWithoutCoords("A"), venueWithoutCoords("B")},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
		})
		assert.Empty(t, result.Venues)
	})

	t.Run("missing center passes venues through unfiltered", func(t *testing.T) {
		venues := []types.Venue{
			venueWithoutCoords("No Coords"),
			venueAt("Far Away", 48.8566, 2.3522),
		}

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     venues,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 15,
			Limit:      5,
		})

		require.Len(t, result.Venues, 2)
		assert.Equal(t, "No Coords", result.Venues[0].Name)
		assert.Zero(t, result.Venues[0].EstimatedMinutes)
	})

	t.Run("non-positive budget falls back to default", func(t *testing.T) {
		// ~1 km out: 12 minutes walking, inside the default 15.
		v := venueAt("Within Default", 38.636, -90.199)

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{v},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: -3,
		})

		require.Len(t, result.Venues, 1)
		assert.LessOrEqual(t, result.Venues[0].EstimatedMinutes, DefaultMaxMinutes)
	})

	t.Run("oversized budget is clamped", func(t *testing.T) {
		// ~10 km out: two hours on foot, beyond the 60 minute cap.
		v := venueAt("Edge Of Town", 38.717, -90.199)

		result := service.FilterByProximity(ctx, ProximityParams{
			Venues:     []types.Venue{v},
			Center:     &center,
			Mode:       types.TravelModeWalk,
			MaxMinutes: 500,
		})

		assert.Empty(t, result.Venues)
	})

	t.Run("radius hint reflects mode and budget", func(t *testing.T) {
		result := service.FilterByProximity(ctx, ProximityParams{
			Center:     &center,
			Mode:       types.TravelModeDrive,
			MaxMinutes: 10,
		})
		assert.Equal(t, 7000, result.RadiusMeters)
	})
}

func TestServiceImpl_OptimizeRoute(t *testing.T) {
	service := setupRoutingServiceTest()
	ctx := context.Background()

	t.Run("no-op for zero, one or two valid venues", func(t *testing.T) {
		for _, venues := range [][]types.Venue{
			nil,
			{venueAt("Solo", 38.627, -90.199)},
			{venueAt("One", 38.627, -90.199), venueAt("Two", 38.630, -90.195)},
			{venueAt("One", 38.627, -90.199), venueAt("Two", 38.630, -90.195), venueWithoutCoords("Ghost")},
		} {
			result := service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)
			assert.Equal(t, venues, result.OptimizedOrder)
			assert.Zero(t, result.TotalTimeMinutes)
			assert.Zero(t, result.TotalDistanceKm)
		}
	})

	t.Run("visits nearer stops before the farthest", func(t *testing.T) {
		a := venueAt("A", 38.627, -90.199)
		b := venueAt("B", 38.630, -90.195)
		c := venueAt("C", 38.620, -90.210)

		// Deliberately bad input order: the far stop sits between the
		// two near ones.
		result := service.OptimizeRoute(ctx, []types.Venue{a, c, b}, nil, types.TravelModeWalk)

		require.Equal(t, []string{"A", "B", "C"}, venueNames(result.OptimizedOrder))

		pa := *a.Position()
		pb := *b.Position()
		pc := *c.Position()
		wantKm := math.Round((geo.DistanceKm(pa, pb)+geo.DistanceKm(pb, pc))*100) / 100
		assert.Equal(t, wantKm, result.TotalDistanceKm)
		assert.Equal(t,
			geo.EtaMinutes(types.TravelModeWalk, geo.DistanceKm(pa, pb))+
				geo.EtaMinutes(types.TravelModeWalk, geo.DistanceKm(pb, pc)),
			result.TotalTimeMinutes)
	})

	t.Run("anchor picks the stop nearest the start point first", func(t *testing.T) {
		a := venueAt("A", 38.627, -90.199)
		b := venueAt("B", 38.630, -90.195)
		c := venueAt("C", 38.620, -90.210)
		start := types.Coordinate{Latitude: 38.6205, Longitude: -90.2095}

		result := service.OptimizeRoute(ctx, []types.Venue{a, b, c}, &start, types.TravelModeWalk)

		require.NotEmpty(t, result.OptimizedOrder)
		assert.Equal(t, "C", result.OptimizedOrder[0].Name)
		// The anchor leg counts toward the totals.
		assert.Positive(t, result.TotalDistanceKm)
	})

	t.Run("optimized order is a permutation of the valid subset", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueWithoutCoords("Ghost"),
			venueAt("B", 38.630, -90.195),
			venueAt("C", 38.620, -90.210),
			venueAt("D", 38.624, -90.202),
		}

		result := service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)

		assert.Len(t, result.OptimizedOrder, 4)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, venueNames(result.OptimizedOrder))
		assert.Equal(t, venues, result.OriginalOrder)
	})

	t.Run("duplicate names are preserved", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("Twin", 38.627, -90.199),
			venueAt("Twin", 38.630, -90.195),
			venueAt("Other", 38.620, -90.210),
		}

		result := service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)
		assert.Len(t, result.OptimizedOrder, 3)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueAt("B", 38.630, -90.195),
			venueAt("C", 38.620, -90.210),
			venueAt("D", 38.624, -90.202),
		}
		clone := make([]types.Venue, len(venues))
		copy(clone, venues)

		first := service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)
		second := service.OptimizeRoute(ctx, clone, nil, types.TravelModeWalk)

		assert.Equal(t, venueNames(first.OptimizedOrder), venueNames(second.OptimizedOrder))
		assert.Equal(t, first.RouteTotals, second.RouteTotals)
	})

	t.Run("input venues are not mutated", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueAt("B", 38.630, -90.195),
			venueAt("C", 38.620, -90.210),
		}
		snapshot := make([]types.Venue, len(venues))
		copy(snapshot, venues)

		service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)
		assert.Equal(t, snapshot, venues)
	})
}

func TestServiceImpl_EvaluateRoute(t *testing.T) {
	service := setupRoutingServiceTest()
	ctx := context.Background()

	t.Run("empty input yields zero totals", func(t *testing.T) {
		totals := service.EvaluateRoute(ctx, nil, nil, types.TravelModeWalk)
		assert.Zero(t, totals.TotalTimeMinutes)
		assert.Zero(t, totals.TotalDistanceKm)
	})

	t.Run("reproduces optimizer totals on the optimized order", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueAt("C", 38.620, -90.210),
			venueAt("B", 38.630, -90.195),
			venueAt("D", 38.624, -90.202),
		}

		optimized := service.OptimizeRoute(ctx, venues, nil, types.TravelModeWalk)
		evaluated := service.EvaluateRoute(ctx, optimized.OptimizedOrder, nil, types.TravelModeWalk)

		assert.Equal(t, optimized.RouteTotals, evaluated)
	})

	t.Run("reproduces optimizer totals with an anchor", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueAt("B", 38.630, -90.195),
			venueAt("C", 38.620, -90.210),
		}
		start := types.Coordinate{Latitude: 38.625, Longitude: -90.2}

		optimized := service.OptimizeRoute(ctx, venues, &start, types.TravelModeWalk)
		evaluated := service.EvaluateRoute(ctx, optimized.OptimizedOrder, &start, types.TravelModeWalk)

		assert.Equal(t, optimized.RouteTotals, evaluated)
	})

	t.Run("anchor leg counts toward the totals", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueAt("B", 38.630, -90.195),
		}
		start := types.Coordinate{Latitude: 38.610, Longitude: -90.220}

		withAnchor := service.EvaluateRoute(ctx, venues, &start, types.TravelModeWalk)
		withoutAnchor := service.EvaluateRoute(ctx, venues, nil, types.TravelModeWalk)

		assert.Greater(t, withAnchor.TotalDistanceKm, withoutAnchor.TotalDistanceKm)
	})

	t.Run("skips venues without coordinates", func(t *testing.T) {
		venues := []types.Venue{
			venueAt("A", 38.627, -90.199),
			venueWithoutCoords("Ghost"),
			venueAt("B", 38.630, -90.195),
		}

		totals := service.EvaluateRoute(ctx, venues, nil, types.TravelModeWalk)
		want := service.EvaluateRoute(ctx, []types.Venue{venues[0], venues[2]}, nil, types.TravelModeWalk)
		assert.Equal(t, want, totals)
	})
}
