package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/middleware"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/service"
	"github.com/mmynk/carpool/internal/storage"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	people  *service.ParticipantService
	trips   *service.TripService
	reports *service.ReportService
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and storage errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrTripReported):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, calculator.ErrInvalidCharge), errors.Is(err, calculator.ErrUnknownParticipant):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateFormat, s)
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.GetParticipantID(r.Context())
	if id == "" {
		writeError(w, http.StatusBadRequest, middleware.ParticipantHeader+" header is required")
		return "", false
	}
	return id, true
}

// --- participants ---

func (h *Handlers) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.people.ListParticipants(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]participantJSON, len(participants))
	for i, p := range participants {
		out[i] = toParticipantJSON(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.people.CreateParticipant(r.Context(), req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantJSON(p))
}

func (h *Handlers) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description  string          `json:"description"`
		PricePerTrip decimal.Decimal `json:"price_per_trip"`
	}
	if !decode(w, r, &req) {
		return
	}
	car, err := h.people.CreateCar(r.Context(), chi.URLParam(r, "id"), req.Description, req.PricePerTrip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCarJSON(car))
}

// --- trips ---

func (h *Handlers) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CarID      string   `json:"car_id"`
		Date       string   `json:"date"`
		Way        string   `json:"way"`
		Passengers []string `json:"passengers"`
		Notes      string   `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	trip, err := h.trips.CreateTrip(r.Context(), service.CreateTripInput{
		CarID:      req.CarID,
		Date:       date,
		Way:        models.Way(req.Way),
		Passengers: req.Passengers,
		Notes:      req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripJSON(trip))
}

func (h *Handlers) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.trips.GetTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripJSON(trip))
}

func (h *Handlers) AddPassengers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passengers []string `json:"passengers"`
	}
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.trips.AddPassengers(r.Context(), chi.URLParam(r, "id"), req.Passengers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripJSON(trip))
}

// RegisterRide adds the caller to the current trip of a driver.
func (h *Handlers) RegisterRide(w http.ResponseWriter, r *http.Request) {
	rider, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		DriverID string `json:"driver_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.trips.RegisterRide(r.Context(), strings.TrimSpace(req.DriverID), rider)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripJSON(trip))
}

// --- settlement ---

// Balances settles the trips not yet in a report without storing anything.
func (h *Handlers) Balances(w http.ResponseWriter, r *http.Request) {
	until, err := parseDate(r.URL.Query().Get("until"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid until date: "+err.Error())
		return
	}
	p, err := h.reports.Preview(r.Context(), until)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": toPaymentsJSON(p)})
}

func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	creator, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Until string `json:"until"`
	}
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	until, err := parseDate(req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid until date: "+err.Error())
		return
	}

	rep, err := h.reports.CreateReport(r.Context(), creator, until)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.reports.Payments(r.Context(), rep.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportJSON{ID: rep.ID, CreatorID: rep.CreatorID, CreatedAt: rep.CreatedAt, Payments: toPaymentsJSON(p)})
}

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.reports.Payments(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportJSON{ID: rep.ID, CreatorID: rep.CreatorID, CreatedAt: rep.CreatedAt, Payments: toPaymentsJSON(p)})
}

func (h *Handlers) GetReportText(w http.ResponseWriter, r *http.Request) {
	p, err := h.reports.Payments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if p == nil {
		_, _ = w.Write([]byte("No trips in this report.\n"))
		return
	}
	if err := p.WriteText(w); err != nil {
		slog.Error("Failed to render report", "error", err)
	}
}
