package trip

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/largekite/travel-planner/app/middleware"
	"github.com/largekite/travel-planner/internal/api"
	"github.com/largekite/travel-planner/internal/types"
)

type Handler struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandler(tripService Service, logger *slog.Logger) *Handler {
	return &Handler{
		tripService: tripService,
		logger:      logger,
	}
}

// requestUserID pulls the authenticated user out of the context, writing the
// error response itself when authentication is missing or malformed.
func (h *Handler) requestUserID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		l.ErrorContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func tripIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "tripID"))
}

// CreateDayTrip saves a new day plan with its slot entries.
func (h *Handler) CreateDayTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "CreateDayTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateDayTrip"))
	l.DebugContext(ctx, "Create day trip handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID.String()))
	l = l.With(slog.String("userID", userID.String()))

	var req types.CreateDayTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		l.ErrorContext(ctx, "Trip title is required")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Trip title is required")
		return
	}

	trip, err := h.tripService.CreateDayTrip(ctx, userID, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create day trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to create day trip: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trip created successfully", slog.String("tripID", trip.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// GetDayTrip retrieves one saved day plan with its slots.
func (h *Handler) GetDayTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetDayTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetDayTrip"))
	l.DebugContext(ctx, "Get day trip handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}

	tripID, err := tripIDParam(r)
	if err != nil {
		l.ErrorContext(ctx, "Invalid trip ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	trip, err := h.tripService.GetDayTrip(ctx, userID, tripID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get day trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Failed to get day trip: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trip retrieved successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// GetDayTrips lists the user's saved day plans, paginated.
func (h *Handler) GetDayTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetDayTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetDayTrips"))
	l.DebugContext(ctx, "List day trips handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	trips, err := h.tripService.GetDayTrips(ctx, userID, page, pageSize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list day trips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to list day trips: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trips listed successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// UpdateDayTrip applies partial updates to a saved day plan; providing slots
// replaces the day's slot entries wholesale.
func (h *Handler) UpdateDayTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "UpdateDayTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateDayTrip"))
	l.DebugContext(ctx, "Update day trip handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}

	tripID, err := tripIDParam(r)
	if err != nil {
		l.ErrorContext(ctx, "Invalid trip ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	var updates types.UpdateDayTripRequest
	if err := api.DecodeJSONBody(w, r, &updates); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.UpdateDayTrip(ctx, userID, tripID, updates)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update day trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to update day trip: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trip updated successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// DeleteDayTrip removes a saved day plan and its slots.
func (h *Handler) DeleteDayTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteDayTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteDayTrip"))
	l.DebugContext(ctx, "Delete day trip handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}

	tripID, err := tripIDParam(r)
	if err != nil {
		l.ErrorContext(ctx, "Invalid trip ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	if err := h.tripService.DeleteDayTrip(ctx, userID, tripID); err != nil {
		l.ErrorContext(ctx, "Failed to delete day trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to delete day trip: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trip deleted successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Day trip deleted successfully"})
}

// OptimizeDayTrip computes a suggested reordering for a saved day plan.
func (h *Handler) OptimizeDayTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "OptimizeDayTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/optimize"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "OptimizeDayTrip"))
	l.DebugContext(ctx, "Optimize day trip handler invoked")

	userID, ok := h.requestUserID(w, r, l)
	if !ok {
		return
	}

	tripID, err := tripIDParam(r)
	if err != nil {
		l.ErrorContext(ctx, "Invalid trip ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	optimization, err := h.tripService.OptimizeDayTrip(ctx, userID, tripID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to optimize day trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fmt.Sprintf("Failed to optimize day trip: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Day trip optimized successfully",
		slog.Int("optimized_minutes", optimization.TotalTimeMinutes))
	api.WriteJSONResponse(w, r, http.StatusOK, optimization)
}
