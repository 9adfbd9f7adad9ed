package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StreamStatus is the durable lifecycle status of a stream.
type StreamStatus string

const (
	StatusDraft     StreamStatus = "DRAFT"
	StatusScheduled StreamStatus = "SCHEDULED"
	StatusLive      StreamStatus = "LIVE"
	StatusEnded     StreamStatus = "ENDED"
)

// Stream is the durable aggregate root. All merchant-facing queries are
// scoped by Shop; webhook lookups resolve by IngestSessionID instead.
type Stream struct {
	ID   uuid.UUID `db:"id"`
	Shop string    `db:"shop"`

	Title        string     `db:"title"`
	Description  string     `db:"description"`
	ScheduledAt  *time.Time `db:"scheduled_at"`
	ThumbnailURL string     `db:"thumbnail_url"`
	Tags         string     `db:"tags"`

	Status        StreamStatus `db:"status"`
	StartedAt     *time.Time   `db:"started_at"`
	LiveStartedAt *time.Time   `db:"live_started_at"`
	EndedAt       *time.Time   `db:"ended_at"`

	// External video-session linkage. IngestSessionID is set at most once
	// for the life of the record.
	IngestSessionID string `db:"ingest_session_id"`
	StreamKey       string `db:"stream_key"`
	IngestURL       string `db:"ingest_url"`
	PlaybackID      string `db:"playback_id"`
	LatencyMode     string `db:"latency_mode"`

	// Post-broadcast asset linkage.
	AssetID         string     `db:"asset_id"`
	AssetPlaybackID string     `db:"asset_playback_id"`
	AssetCreatedAt  *time.Time `db:"asset_created_at"`

	// MigratedVideoURL points at externally hosted video for streams whose
	// recording was moved off the provider.
	MigratedVideoURL string `db:"migrated_video_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasIngestSession reports whether an external video session was provisioned.
func (s *Stream) HasIngestSession() bool {
	return s.IngestSessionID != ""
}

// IsTerminal reports whether the stream reached its final state.
func (s *Stream) IsTerminal() bool {
	return s.Status == StatusEnded
}

// IngestSession carries the credentials returned by the video platform when
// an RTMP receiving endpoint is provisioned.
type IngestSession struct {
	SessionID   string
	StreamKey   string
	IngestURL   string
	PlaybackID  string
	LatencyMode string
}

// RecordedAsset is the post-broadcast recording reference delivered by the
// video platform once a live stream finished.
type RecordedAsset struct {
	AssetID    string
	PlaybackID string
	CreatedAt  time.Time
}

// StreamDetails captures the merchant-editable descriptive fields.
type StreamDetails struct {
	Title        string
	Description  string
	ScheduledAt  *time.Time
	ThumbnailURL string
	Tags         string
}

// StreamRepository is the durable stream record store.
type StreamRepository interface {
	Create(ctx context.Context, shop string, details StreamDetails) (*Stream, error)
	GetByID(ctx context.Context, shop string, id uuid.UUID) (*Stream, error)
	ListByShop(ctx context.Context, shop string) ([]Stream, error)
	UpdateDetails(ctx context.Context, shop string, id uuid.UUID, details StreamDetails) (*Stream, error)
	MarkScheduled(ctx context.Context, shop string, id uuid.UUID, at time.Time) error

	// SetIngestSession persists the external session linkage. It fails with
	// ErrSessionExists when a session id is already present; the linkage is
	// immutable once written.
	SetIngestSession(ctx context.Context, id uuid.UUID, session IngestSession) error

	// GetByIngestSessionID resolves a webhook event to its stream. Not
	// shop-scoped: the platform does not know about tenants.
	GetByIngestSessionID(ctx context.Context, sessionID string) (*Stream, error)

	// SetPlaybackID persists a playback id that arrived after session
	// creation. A no-op when the record already carries one.
	SetPlaybackID(ctx context.Context, id uuid.UUID, playbackID string) error

	MarkLive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error

	// SetRecordedAsset persists the recording linkage. Returns false without
	// modifying anything when an asset id is already stored (idempotent).
	SetRecordedAsset(ctx context.Context, id uuid.UUID, asset RecordedAsset) (bool, error)

	// ClearAgedAssets drops asset linkage for recordings created before the
	// cutoff. Returns the number of affected streams.
	ClearAgedAssets(ctx context.Context, cutoff time.Time) (int64, error)
}
