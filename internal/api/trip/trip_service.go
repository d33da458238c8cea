package trip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/largekite/travel-planner/internal/api/routing"
	"github.com/largekite/travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// DayOptimization is the before/after comparison for one saved day trip.
// Computed on demand; never stored.
type DayOptimization struct {
	TripID uuid.UUID `json:"trip_id"`
	types.RouteOptimization
	AsSelected types.RouteTotals `json:"as_selected"`
}

// Service defines the business logic contract for saved day trips.
type Service interface {
	CreateDayTrip(ctx context.Context, userID uuid.UUID, req types.CreateDayTripRequest) (*types.DayTrip, error)
	GetDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.DayTrip, error)
	GetDayTrips(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedDayTripsResponse, error)
	UpdateDayTrip(ctx context.Context, userID, tripID uuid.UUID, updates types.UpdateDayTripRequest) (*types.DayTrip, error)
	DeleteDayTrip(ctx context.Context, userID, tripID uuid.UUID) error
	OptimizeDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*DayOptimization, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	tripRepository Repository
	routingService routing.Service
}

func NewServiceImpl(tripRepository Repository, routingService routing.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		tripRepository: tripRepository,
		routingService: routingService,
	}
}

func (s *ServiceImpl) CreateDayTrip(ctx context.Context, userID uuid.UUID, req types.CreateDayTripRequest) (*types.DayTrip, error) {
	trip, err := s.tripRepository.CreateDayTrip(ctx, userID, req)
	if err != nil {
		s.logger.Error("failed to create day trip", "error", err)
		return nil, err
	}
	return trip, nil
}

func (s *ServiceImpl) GetDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.DayTrip, error) {
	trip, err := s.tripRepository.GetDayTrip(ctx, userID, tripID)
	if err != nil {
		s.logger.Error("failed to get day trip", "error", err)
		return nil, err
	}
	return trip, nil
}

func (s *ServiceImpl) GetDayTrips(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedDayTripsResponse, error) {
	_, span := otel.Tracer("TripService").Start(ctx, "GetDayTrips", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	trips, totalRecords, err := s.tripRepository.GetDayTrips(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get day trips", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to retrieve day trips: %w", err)
	}

	span.SetAttributes(attribute.Int("trips.count", len(trips)), attribute.Int("total_records", totalRecords))
	span.SetStatus(codes.Ok, "Day trips retrieved")

	return &types.PaginatedDayTripsResponse{
		Trips:        trips,
		TotalRecords: totalRecords,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

func (s *ServiceImpl) UpdateDayTrip(ctx context.Context, userID, tripID uuid.UUID, updates types.UpdateDayTripRequest) (*types.DayTrip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateDayTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if updates.Title == nil && updates.TripDate == nil && updates.Center == nil &&
		updates.TravelMode == nil && updates.Slots == nil {
		span.AddEvent("No update fields provided.")
		s.logger.InfoContext(ctx, "No fields provided for day trip update, fetching current.", slog.String("tripID", tripID.String()))
		return s.tripRepository.GetDayTrip(ctx, userID, tripID)
	}

	trip, err := s.tripRepository.UpdateDayTrip(ctx, userID, tripID, updates)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to update day trip", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Day trip updated")
	return trip, nil
}

func (s *ServiceImpl) DeleteDayTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	if err := s.tripRepository.DeleteDayTrip(ctx, userID, tripID); err != nil {
		s.logger.Error("failed to delete day trip", "error", err)
		return err
	}
	return nil
}

// OptimizeDayTrip loads the day's chosen venues in slot order and asks the
// routing core for a shorter loop anchored at the trip's center. The stored
// order is left untouched; accepting the suggestion is the caller's call.
func (s *ServiceImpl) OptimizeDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*DayOptimization, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "OptimizeDayTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	trip, err := s.tripRepository.GetDayTrip(ctx, userID, tripID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get day trip for optimization", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load day trip: %w", err)
	}

	venues := make([]types.Venue, 0, len(trip.Slots))
	for _, slot := range trip.Slots {
		venues = append(venues, slot.Venue)
	}

	optimization := s.routingService.OptimizeRoute(ctx, venues, trip.Center, trip.TravelMode)
	asSelected := s.routingService.EvaluateRoute(ctx, venues, trip.Center, trip.TravelMode)

	span.SetAttributes(
		attribute.Int("stops", len(optimization.OptimizedOrder)),
		attribute.Int("optimized_minutes", optimization.TotalTimeMinutes),
	)
	span.SetStatus(codes.Ok, "Day trip optimized")

	return &DayOptimization{
		TripID:            trip.ID,
		RouteOptimization: optimization,
		AsSelected:        asSelected,
	}, nil
}
