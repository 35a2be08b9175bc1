package domain

import (
	"context"
	"time"
)

// Bounds is a geographic bounding box in WGS-84 degrees.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// BoundsEvent is one viewport notification from the rendering surface,
// forwarded unmodified to the tracker.
type BoundsEvent struct {
	SessionID  string    `json:"session_id"`
	Domain     string    `json:"domain"`
	Variable   string    `json:"variable"`
	Bounds     Bounds    `json:"bounds"`
	ObservedAt time.Time `json:"observed_at"`
}

// BoundsTracker receives viewport notifications. The production
// implementation publishes to Kafka; a nop tracker is used when the sink is
// not configured.
type BoundsTracker interface {
	TrackBounds(ctx context.Context, event BoundsEvent) error
}

// NopBoundsTracker discards all events.
type NopBoundsTracker struct{}

func (NopBoundsTracker) TrackBounds(context.Context, BoundsEvent) error { return nil }
