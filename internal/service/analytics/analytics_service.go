package analytics

import (
	"context"
	"math"
	"time"

	"github.com/clubhub/campusbooking/config"
	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/clubhub/campusbooking/internal/repository"
	"github.com/google/uuid"
)

type AnalyticsUseCase interface {
	ClubEngagement(ctx context.Context, clubID uuid.UUID) (*EngagementReport, error)
	ResourceUtilization(ctx context.Context, resourceID uuid.UUID, since time.Time) (*UtilizationReport, error)
}

// EngagementReport is a point-in-time score for one club. Components are
// individually capped so one dimension cannot dominate.
type EngagementReport struct {
	ClubID          uuid.UUID `json:"club_id"`
	Score           float64   `json:"score"`
	MemberPoints    float64   `json:"member_points"`
	EventPoints     float64   `json:"event_points"`
	FillRatePoints  float64   `json:"fill_rate_points"`
	RatingPoints    float64   `json:"rating_points"`
	MemberCount     int       `json:"member_count"`
	EventCount      int       `json:"event_count"`
	FillRatePercent float64   `json:"fill_rate_percent"`
	AverageRating   float64   `json:"average_rating"`
}

type UtilizationReport struct {
	ResourceID      uuid.UUID `json:"resource_id"`
	Since           time.Time `json:"since"`
	TotalBookings   int       `json:"total_bookings"`
	BookedHours     float64   `json:"booked_hours"`
	UtilizationRate float64   `json:"utilization_rate"`
}

type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	weights   config.AnalyticsConfig
}

func NewAnalyticsService(analytics repository.AnalyticsRepository, weights config.AnalyticsConfig) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, weights: weights}
}

func (s *AnalyticsService) ClubEngagement(ctx context.Context, clubID uuid.UUID) (*EngagementReport, error) {
	stats, err := s.analytics.ClubStats(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return s.score(clubID, stats), nil
}

func (s *AnalyticsService) score(clubID uuid.UUID, stats *domain.ClubStats) *EngagementReport {
	w := s.weights

	fillRate := 0.0
	if stats.TotalCapacity > 0 {
		fillRate = float64(stats.RegistrationCount) / float64(stats.TotalCapacity) * 100
	}

	memberPoints := math.Min(float64(stats.MemberCount)*w.MemberPointsPer, w.MemberPointsCap)
	eventPoints := math.Min(float64(stats.EventCount)*w.EventPointsPer, w.EventPointsCap)
	fillRatePoints := math.Min(fillRate/w.FillRateDivisor, w.FillRatePointsCap)
	ratingPoints := math.Min(stats.AverageRating*w.RatingMultiplier, w.RatingPointsCap)

	return &EngagementReport{
		ClubID:          clubID,
		Score:           math.Min(memberPoints+eventPoints+fillRatePoints+ratingPoints, w.ScoreCap),
		MemberPoints:    memberPoints,
		EventPoints:     eventPoints,
		FillRatePoints:  fillRatePoints,
		RatingPoints:    ratingPoints,
		MemberCount:     stats.MemberCount,
		EventCount:      stats.EventCount,
		FillRatePercent: fillRate,
		AverageRating:   stats.AverageRating,
	}
}

func (s *AnalyticsService) ResourceUtilization(ctx context.Context, resourceID uuid.UUID, since time.Time) (*UtilizationReport, error) {
	usage, err := s.analytics.ResourceUsage(ctx, resourceID, since)
	if err != nil {
		return nil, err
	}
	return &UtilizationReport{
		ResourceID:      resourceID,
		Since:           since,
		TotalBookings:   usage.TotalBookings,
		BookedHours:     usage.BookedHours,
		UtilizationRate: usage.UtilizationRate(),
	}, nil
}

var _ AnalyticsUseCase = (*AnalyticsService)(nil)
