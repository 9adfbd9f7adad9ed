package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StreamProduct is the ordered membership of a catalog item in a stream's
// lineup. Position is dense and zero-based; repositories keep positions
// contiguous after every mutation.
type StreamProduct struct {
	ID         uuid.UUID  `db:"id"`
	StreamID   uuid.UUID  `db:"stream_id"`
	ProductGID string     `db:"product_gid"`
	Position   int        `db:"position"`
	FeaturedAt *time.Time `db:"featured_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

// ProductRepository manages a stream's product lineup.
type ProductRepository interface {
	// Add appends the product at the end of the lineup.
	Add(ctx context.Context, streamID uuid.UUID, productGID string) (*StreamProduct, error)

	// Remove deletes the product and reindexes the remaining lineup so
	// positions stay a contiguous 0..N-1 sequence.
	Remove(ctx context.Context, streamID, productID uuid.UUID) error

	// Reorder rewrites positions to match the given id order. Every product
	// of the stream must appear exactly once.
	Reorder(ctx context.Context, streamID uuid.UUID, orderedIDs []uuid.UUID) error

	// MarkFeatured stamps the moment the product was highlighted live.
	MarkFeatured(ctx context.Context, streamID, productID uuid.UUID, at time.Time) (*StreamProduct, error)

	ListByStream(ctx context.Context, streamID uuid.UUID) ([]StreamProduct, error)
}
