package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/metrics"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/report"
	"github.com/mmynk/carpool/internal/storage"
)

// ReportService closes batches of trips into reports and settles them.
type ReportService struct {
	store   storage.Store
	metrics *metrics.Metrics

	// payments caches settled reports. A report's trips are locked once
	// attached, so an entry never goes stale.
	payments *lru.Cache[string, *report.Payments]
}

// NewReportService creates a ReportService caching up to cacheSize settled reports.
func NewReportService(store storage.Store, m *metrics.Metrics, cacheSize int) (*ReportService, error) {
	cache, err := lru.New[string, *report.Payments](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	return &ReportService{store: store, metrics: m, payments: cache}, nil
}

// CreateReport attaches every unreported trip up to until (zero means all)
// to a new report created by creatorID.
func (s *ReportService) CreateReport(ctx context.Context, creatorID string, until time.Time) (*models.Report, error) {
	slog.Info("CreateReport request received", "creator_id", creatorID, "until", until.Format(models.DateFormat))

	if _, err := s.store.GetParticipant(ctx, creatorID); err != nil {
		slog.Error("CreateReport creator lookup failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	trips, err := s.store.ListUnreportedTrips(ctx, until)
	if err != nil {
		slog.Error("CreateReport failed to list trips", "error", err)
		return nil, err
	}
	tripIDs := make([]string, len(trips))
	for i, t := range trips {
		tripIDs[i] = t.ID
	}

	// Attached trips are locked. Only a batch that settles is attached.
	if len(trips) > 0 {
		if _, err := s.settle(ctx, trips, creatorID); err != nil {
			slog.Error("CreateReport settlement failed", "creator_id", creatorID, "error", err)
			return nil, err
		}
	}

	r := &models.Report{CreatorID: creatorID}
	if err := s.store.CreateReport(ctx, r, tripIDs); err != nil {
		slog.Error("CreateReport failed", "error", err)
		return nil, err
	}

	slog.Info("Report created", "report_id", r.ID, "trips_count", len(tripIDs))
	return r, nil
}

// GetReport retrieves a report by ID.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	r, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		slog.Error("GetReport failed", "report_id", reportID, "error", err)
		return nil, err
	}
	return r, nil
}

// Payments settles a report's trips. It returns nil without error when the
// report has no trips.
func (s *ReportService) Payments(ctx context.Context, reportID string) (*report.Payments, error) {
	if p, ok := s.payments.Get(reportID); ok {
		s.metrics.ReportCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	s.metrics.ReportCache.WithLabelValues("miss").Inc()

	r, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	trips, err := s.store.ListTripsByReport(ctx, reportID)
	if err != nil {
		slog.Error("Payments failed to list trips", "report_id", reportID, "error", err)
		return nil, err
	}
	if len(trips) == 0 {
		return nil, nil
	}

	p, err := s.settle(ctx, trips, r.CreatorID)
	if err != nil {
		slog.Error("Payments settlement failed", "report_id", reportID, "error", err)
		return nil, err
	}

	s.payments.Add(reportID, p)
	slog.Info("Report settled", "report_id", reportID, "instructions", len(p.Settlement.Instructions()))
	return p, nil
}

// Preview settles the trips not yet in any report, up to until (zero means all).
// Nothing is stored. It returns nil without error when there are no such trips.
func (s *ReportService) Preview(ctx context.Context, until time.Time) (*report.Payments, error) {
	trips, err := s.store.ListUnreportedTrips(ctx, until)
	if err != nil {
		slog.Error("Preview failed to list trips", "error", err)
		return nil, err
	}
	if len(trips) == 0 {
		return nil, nil
	}
	return s.settle(ctx, trips)
}

// settle runs the calculator over trips. The participants are the drivers
// and passengers of those trips plus extra, in registration order, so the
// result depends only on the trips.
func (s *ReportService) settle(ctx context.Context, trips []*models.Trip, extra ...string) (*report.Payments, error) {
	involved := make(map[string]bool)
	for _, id := range extra {
		involved[id] = true
	}

	cars := make(map[string]*models.Car)
	input := make([]calculator.TripForCharges, 0, len(trips))
	for _, t := range trips {
		car, ok := cars[t.CarID]
		if !ok {
			var err error
			car, err = s.store.GetCar(ctx, t.CarID)
			if err != nil {
				return nil, err
			}
			cars[t.CarID] = car
		}
		involved[car.OwnerID] = true
		for _, id := range t.Passengers {
			involved[id] = true
		}
		input = append(input, calculator.TripForCharges{
			Driver:            car.OwnerID,
			Passengers:        t.Passengers,
			PricePerPassenger: t.PricePerPassenger,
			Date:              t.Date,
			Label:             t.Label(*car),
		})
	}

	stored, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	participants := make([]calculator.Participant, 0, len(involved))
	for _, p := range stored {
		if involved[p.ID] {
			participants = append(participants, calculator.Participant{ID: p.ID, Name: p.FullName()})
		}
	}

	start := time.Now()
	settlement, charges, err := calculator.SettleTrips(participants, input)
	if err != nil {
		s.metrics.ObserveSettlement(start, 0, err)
		return nil, fmt.Errorf("failed to settle %d trips: %w", len(trips), err)
	}
	s.metrics.ObserveSettlement(start, len(settlement.Instructions()), nil)

	p := report.NewPayments(participants, charges, settlement)
	for _, t := range trips {
		p.Widen(t.Date)
	}
	return p, nil
}
