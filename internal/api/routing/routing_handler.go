package routing

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/largekite/travel-planner/app/observability/metrics"
	"github.com/largekite/travel-planner/internal/api"
	"github.com/largekite/travel-planner/internal/types"
)

type Handler struct {
	routingService Service
	logger         *slog.Logger
}

func NewHandler(routingService Service, logger *slog.Logger) *Handler {
	return &Handler{
		routingService: routingService,
		logger:         logger,
	}
}

// FilterByProximity ranks the submitted venues by estimated travel time from
// the center and trims the list to the budget and limit.
func (h *Handler) FilterByProximity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RoutingHandler").Start(r.Context(), "FilterByProximity", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/routing/proximity"),
	))
	defer span.End()
	start := time.Now()

	l := h.logger.With(slog.String("handler", "FilterByProximity"))
	l.DebugContext(ctx, "Proximity filter handler invoked")

	var req ProximityRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := h.routingService.FilterByProximity(ctx, ProximityParams{
		Venues:     req.Venues,
		Center:     req.Center,
		Mode:       types.ParseTravelMode(req.Mode),
		MaxMinutes: req.MaxMinutes,
		Limit:      req.Limit,
	})

	m := metrics.Get()
	m.RoutingRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "proximity")))
	m.RoutingDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("operation", "proximity")))

	l.InfoContext(ctx, "Proximity filter completed",
		slog.Int("candidates", len(req.Venues)),
		slog.Int("returned", len(result.Venues)))
	api.WriteJSONResponse(w, r, http.StatusOK, ProximityResponse{
		Venues:       result.Venues,
		RadiusMeters: result.RadiusMeters,
	})
}

// OptimizeRoute suggests a shorter visiting order for a day's chosen venues
// and reports the totals of both orders.
func (h *Handler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RoutingHandler").Start(r.Context(), "OptimizeRoute", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/routing/optimize"),
	))
	defer span.End()
	start := time.Now()

	l := h.logger.With(slog.String("handler", "OptimizeRoute"))
	l.DebugContext(ctx, "Optimize route handler invoked")

	var req OptimizeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode := types.ParseTravelMode(req.Mode)
	optimization := h.routingService.OptimizeRoute(ctx, req.Venues, req.Start, mode)
	asSelected := h.routingService.EvaluateRoute(ctx, req.Venues, req.Start, mode)

	m := metrics.Get()
	m.RoutingRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "optimize")))
	m.RoutingDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("operation", "optimize")))

	l.InfoContext(ctx, "Route optimized",
		slog.Int("stops", len(optimization.OptimizedOrder)),
		slog.Int("optimized_minutes", optimization.TotalTimeMinutes),
		slog.Int("as_selected_minutes", asSelected.TotalTimeMinutes))
	api.WriteJSONResponse(w, r, http.StatusOK, OptimizeResponse{
		RouteOptimization: optimization,
		AsSelected:        asSelected,
	})
}

// EvaluateRoute reports the leg-by-leg totals of the submitted order.
func (h *Handler) EvaluateRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RoutingHandler").Start(r.Context(), "EvaluateRoute", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/routing/evaluate"),
	))
	defer span.End()
	start := time.Now()

	l := h.logger.With(slog.String("handler", "EvaluateRoute"))
	l.DebugContext(ctx, "Evaluate route handler invoked")

	var req EvaluateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	totals := h.routingService.EvaluateRoute(ctx, req.Venues, req.Start, types.ParseTravelMode(req.Mode))

	m := metrics.Get()
	m.RoutingRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))
	m.RoutingDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("operation", "evaluate")))

	l.InfoContext(ctx, "Route evaluated", slog.Int("total_minutes", totals.TotalTimeMinutes))
	api.WriteJSONResponse(w, r, http.StatusOK, totals)
}
