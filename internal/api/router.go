// Package api exposes the carpool services over HTTP/JSON.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/carpool/internal/middleware"
	"github.com/mmynk/carpool/internal/service"
)

// NewRouter creates the Chi router with all API routes mounted.
// gatherer backs the /metrics endpoint.
func NewRouter(
	people *service.ParticipantService,
	trips *service.TripService,
	reports *service.ReportService,
	gatherer prometheus.Gatherer,
) http.Handler {
	h := &Handlers{people: people, trips: trips, reports: reports}

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.Identify)
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Participants and cars.
		r.Get("/participants", h.ListParticipants)
		r.Post("/participants", h.CreateParticipant)
		r.Post("/participants/{id}/car", h.CreateCar)

		// Trips.
		r.Post("/trips", h.CreateTrip)
		r.Get("/trips/{id}", h.GetTrip)
		r.Post("/trips/{id}/passengers", h.AddPassengers)
		r.Post("/rides", h.RegisterRide)

		// Settlement.
		r.Get("/balances", h.Balances)
		r.Post("/reports", h.CreateReport)
		r.Get("/reports/{id}", h.GetReport)
		r.Get("/reports/{id}/text", h.GetReportText)
	})

	return r
}
