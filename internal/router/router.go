package api

import (
	"net/http"

	"github.com/largekite/travel-planner/internal/api/routing"
	"github.com/largekite/travel-planner/internal/api/trip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config contains dependencies needed for the router setup
type Config struct {
	RoutingHandler         *routing.Handler
	TripHandler            *trip.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public Routing Routes ---
		// Stateless routing operations take venues in the request body
		// and do not require authentication.
		r.Group(func(r chi.Router) {
			r.Post("/routing/proximity", cfg.RoutingHandler.FilterByProximity)
			r.Post("/routing/optimize", cfg.RoutingHandler.OptimizeRoute)
			r.Post("/routing/evaluate", cfg.RoutingHandler.EvaluateRoute)
		})

		// --- Protected Routes ---
		// Routes under this group require JWT authentication.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", cfg.TripHandler.CreateDayTrip)
				r.Get("/", cfg.TripHandler.GetDayTrips)
				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", cfg.TripHandler.GetDayTrip)
					r.Put("/", cfg.TripHandler.UpdateDayTrip)
					r.Delete("/", cfg.TripHandler.DeleteDayTrip)
					r.Post("/optimize", cfg.TripHandler.OptimizeDayTrip)
				})
			})
		})
	})

	return r
}
