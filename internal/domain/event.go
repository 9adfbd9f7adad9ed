package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a significant lifecycle transition in the audit log.
type EventType string

const (
	EventStreamStarted   EventType = "STREAM_STARTED"
	EventStreamEnded     EventType = "STREAM_ENDED"
	EventProductFeatured EventType = "PRODUCT_FEATURED"
	EventAssetReady      EventType = "ASSET_READY"
)

// StreamEvent is an immutable audit log entry. Entries are appended exactly
// once per transition and never updated or deleted.
type StreamEvent struct {
	ID        uuid.UUID       `db:"id"`
	StreamID  uuid.UUID       `db:"stream_id"`
	Type      EventType       `db:"type"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}

// EventRepository is the append-only audit log. The interface deliberately
// offers no update or delete operation.
type EventRepository interface {
	Append(ctx context.Context, streamID uuid.UUID, eventType EventType, payload any) error
	ListByStream(ctx context.Context, streamID uuid.UUID) ([]StreamEvent, error)
}
