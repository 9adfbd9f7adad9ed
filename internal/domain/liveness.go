package domain

import (
	"context"

	"github.com/google/uuid"
)

// LivenessState is the ephemeral encoder-connectivity hint, distinct from the
// durable lifecycle status. It is advisory: absence carries no meaning beyond
// "no signal observed", and it is only eventually consistent with the record.
type LivenessState string

const (
	LivenessUnknown LivenessState = ""
	LivenessLive    LivenessState = "live"
	LivenessEnded   LivenessState = "ended"
)

// LivenessStore is the fast key-value flag recording whether the external
// encoder is currently pushing video. Writes are unconditional
// last-write-wins; there is no transactional tie to the stream record.
type LivenessStore interface {
	Set(ctx context.Context, streamID uuid.UUID, state LivenessState) error

	// Get returns LivenessUnknown (and no error) when no entry exists.
	Get(ctx context.Context, streamID uuid.UUID) (LivenessState, error)

	Clear(ctx context.Context, streamID uuid.UUID) error
}
