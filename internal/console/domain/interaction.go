package domain

import "time"

// Interaction is one chat exchange recorded by the widget. All clients
// share a single table filtered by ClientID; table names are never derived
// from client data.
type Interaction struct {
	ID             string
	ClientID       string
	Query          string
	ResponseTimeMS int64
	CreatedAt      time.Time
}

// QueryCount is one entry of a top-queries ranking.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// InteractionStats are the dashboard metrics for one client.
type InteractionStats struct {
	TotalInteractions  int64        `json:"total_interactions"`
	ActiveDays         int64        `json:"active_days"`
	AvgResponseSeconds float64      `json:"average_response_time"`
	TopQueries         []QueryCount `json:"top_queries"`
}
