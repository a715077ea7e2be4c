package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/models"
)

// EventStore persists analytics events.
type EventStore interface {
	Create(ctx context.Context, e *models.AnalyticsEvent) error
	CountByName(ctx context.Context, since time.Time) ([]models.EventCount, error)
	List(ctx context.Context, name string, limit, offset int) ([]models.AnalyticsEvent, int, error)
}

// AnalyticsService records portal usage events.
type AnalyticsService struct {
	events EventStore
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(events EventStore) *AnalyticsService {
	return &AnalyticsService{events: events}
}

// Track stores an event. Tracking never fails the caller: errors are logged.
func (s *AnalyticsService) Track(ctx context.Context, name, workspaceID, userID string, props map[string]any) {
	e := &models.AnalyticsEvent{Name: name, WorkspaceID: workspaceID}
	if userID != "" {
		e.UserID = &userID
	}
	if len(props) > 0 {
		raw, err := json.Marshal(props)
		if err != nil {
			log.Warn().Err(err).Str("event", name).Msg("Dropping unencodable event properties")
		} else {
			e.Properties = raw
		}
	}
	if err := s.events.Create(ctx, e); err != nil {
		log.Error().Err(err).Str("event", name).Msg("Failed to track event")
	}
}

// TrackPageView records a page view.
func (s *AnalyticsService) TrackPageView(ctx context.Context, page, workspaceID, userID string) {
	e := &models.AnalyticsEvent{Name: models.EventPageView, Page: &page, WorkspaceID: workspaceID}
	if userID != "" {
		e.UserID = &userID
	}
	if err := s.events.Create(ctx, e); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to track page view")
	}
}

// Summary counts events per name over the last window.
func (s *AnalyticsService) Summary(ctx context.Context, window time.Duration) ([]models.EventCount, error) {
	return s.events.CountByName(ctx, time.Now().Add(-window))
}

// List returns a page of events, newest first.
func (s *AnalyticsService) List(ctx context.Context, name string, page, limit int) ([]models.AnalyticsEvent, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.events.List(ctx, name, limit, (page-1)*limit)
}
