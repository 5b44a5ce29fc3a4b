package service

import (
	"context"

	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// DashboardService builds read-only projections over the ledger
type DashboardService interface {
	// OrganizerDashboard summarizes sales across the organizer's events
	OrganizerDashboard(ctx context.Context, organizerID string) (*domain.OrganizerDashboard, error)

	// AdminStats summarizes the whole platform
	AdminStats(ctx context.Context) (*domain.AdminStats, error)
}

type dashboardService struct {
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
	reviewRepo  repository.ReviewRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	reviewRepo repository.ReviewRepository,
) DashboardService {
	return &dashboardService{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
	}
}

// OrganizerDashboard summarizes sales across the organizer's events
func (s *dashboardService) OrganizerDashboard(ctx context.Context, organizerID string) (*domain.OrganizerDashboard, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.dashboard.organizer")
	defer span.End()

	if organizerID == "" {
		return nil, domain.ErrInvalidUserID
	}

	events, err := s.eventRepo.List(ctx, domain.EventFilter{OrganizerID: organizerID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	summaries, err := s.bookingRepo.SummarizeByEvent(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dashboard := &domain.OrganizerDashboard{
		OrganizerID: organizerID,
		TotalEvents: len(events),
		Events:      make([]domain.EventSales, 0, len(events)),
	}
	for _, e := range events {
		summary := summaries[e.ID]
		dashboard.Events = append(dashboard.Events, domain.EventSales{
			EventID:      e.ID,
			Title:        e.Title,
			Status:       e.Status,
			SeatMap:      e.SeatMap,
			SalesSummary: summary,
		})
		dashboard.SalesSummary.Merge(summary)
	}

	span.SetStatus(codes.Ok, "")
	return dashboard, nil
}

// AdminStats summarizes the whole platform
func (s *dashboardService) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.dashboard.admin")
	defer span.End()

	byStatus, err := s.eventRepo.CountByStatus(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	summary, totalBookings, err := s.bookingRepo.Summarize(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	totalReviews, err := s.reviewRepo.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	stats := &domain.AdminStats{
		EventsByStatus: byStatus,
		TotalBookings:  totalBookings,
		TotalReviews:   totalReviews,
		SalesSummary:   summary,
	}
	for _, n := range byStatus {
		stats.TotalEvents += n
	}

	span.SetStatus(codes.Ok, "")
	return stats, nil
}
