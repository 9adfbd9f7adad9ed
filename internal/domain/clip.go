package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StreamClip is a time-bounded excerpt of a stream's recorded asset, either
// auto-generated around a featured-product window or manually specified.
type StreamClip struct {
	ID             uuid.UUID `db:"id"`
	StreamID       uuid.UUID `db:"stream_id"`
	ProductGID     string    `db:"product_gid"`
	ClipAssetID    string    `db:"clip_asset_id"`
	ClipPlaybackID string    `db:"clip_playback_id"`
	StartSeconds   float64   `db:"start_seconds"`
	EndSeconds     float64   `db:"end_seconds"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	CreatedAt      time.Time `db:"created_at"`
}

// ValidateClipWindow checks the clip offsets: start must be non-negative and
// the end must come strictly after the start.
func ValidateClipWindow(startSeconds, endSeconds float64) error {
	if startSeconds < 0 {
		return fmt.Errorf("%w: clip start must not be negative, got %.2f", ErrInvalidInput, startSeconds)
	}
	if endSeconds <= startSeconds {
		return fmt.Errorf("%w: clip end (%.2f) must be after clip start (%.2f)", ErrInvalidInput, endSeconds, startSeconds)
	}
	return nil
}

// ClipRepository stores clip records.
type ClipRepository interface {
	Create(ctx context.Context, clip *StreamClip) error
	ListByStream(ctx context.Context, streamID uuid.UUID) ([]StreamClip, error)
}
