package models

import (
	"encoding/json"
	"time"
)

// Analytics event names.
const (
	EventPageView           = "page_view"
	EventSimulationDone     = "multi_bank_simulation_completed"
	EventApplicationStarted = "bank_offer_application_started"
	EventComparisonSaved    = "comparison_saved"
)

// AnalyticsEvent is one tracked portal event.
type AnalyticsEvent struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Page        *string         `db:"page" json:"page,omitempty"`
	WorkspaceID string          `db:"workspace_id" json:"workspaceId"`
	UserID      *string         `db:"user_id" json:"userId,omitempty"`
	Properties  json.RawMessage `db:"properties" json:"properties"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// EventCount is the number of events of one name.
type EventCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}
