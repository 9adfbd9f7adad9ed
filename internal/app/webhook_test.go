package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

func activeEvent(sessionID, playbackID string) *mux.Event {
	evt := &mux.Event{Type: mux.EventLiveStreamActive}
	evt.Data.ID = sessionID
	evt.Data.Status = "active"
	if playbackID != "" {
		evt.Data.PlaybackIDs = append(evt.Data.PlaybackIDs, mux.PlaybackRef{ID: playbackID})
	}
	return evt
}

func TestWebhookUnknownSession(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	env.mustPrepareSession(t, stream.ID)

	evt := activeEvent("never-provisioned", "")
	err := env.svc.HandleWebhookEvent(context.Background(), evt)
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	got := env.streams.get(stream.ID)
	assert.Equal(t, domain.StatusDraft, got.Status, "nothing may be mutated")
	state, _ := env.liveness.Get(context.Background(), stream.ID)
	assert.Equal(t, domain.LivenessUnknown, state)
}

func TestWebhookEncoderActiveStrictFlow(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)

	err := env.svc.HandleWebhookEvent(context.Background(), activeEvent(prepared.IngestSessionID, ""))
	require.NoError(t, err)

	state, err := env.liveness.Get(context.Background(), stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LivenessLive, state)

	got := env.streams.get(stream.ID)
	assert.Equal(t, domain.StatusDraft, got.Status, "encoder traffic alone never flips the record")
	assert.Equal(t, 0, env.events.countByType(stream.ID, domain.EventStreamStarted))
}

func TestWebhookEncoderActiveAutoGoLive(t *testing.T) {
	env := newTestEnv(t, Options{AutoGoLive: true})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)

	err := env.svc.HandleWebhookEvent(context.Background(), activeEvent(prepared.IngestSessionID, ""))
	require.NoError(t, err)

	got := env.streams.get(stream.ID)
	assert.Equal(t, domain.StatusLive, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.Equal(t, env.clock.Now().UTC(), *got.StartedAt)
	assert.Equal(t, 1, env.events.countByType(stream.ID, domain.EventStreamStarted))

	state, _ := env.liveness.Get(context.Background(), stream.ID)
	assert.Equal(t, domain.LivenessLive, state)
}

func TestWebhookEncoderActiveBackfillsPlaybackID(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)

	// Blank out the stored playback id to simulate a session provisioned
	// before the platform assigned one.
	env.streams.mu.Lock()
	env.streams.streams[stream.ID].PlaybackID = ""
	env.streams.mu.Unlock()

	err := env.svc.HandleWebhookEvent(context.Background(), activeEvent(prepared.IngestSessionID, "late-pb"))
	require.NoError(t, err)

	got := env.streams.get(stream.ID)
	assert.Equal(t, "late-pb", got.PlaybackID)
}

func TestWebhookEncoderIdleEndsLiveStream(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)
	ctx := context.Background()

	require.NoError(t, env.liveness.Set(ctx, stream.ID, domain.LivenessLive))
	_, err := env.svc.StartStreaming(ctx, testShop, stream.ID)
	require.NoError(t, err)

	env.clock.Advance(20 * time.Minute)
	idle := &mux.Event{Type: mux.EventLiveStreamIdle}
	idle.Data.ID = prepared.IngestSessionID
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, idle))

	got := env.streams.get(stream.ID)
	assert.Equal(t, domain.StatusEnded, got.Status)
	require.NotNil(t, got.EndedAt)
	assert.Equal(t, env.clock.Now().UTC(), *got.EndedAt)
	assert.Equal(t, 1, env.events.countByType(stream.ID, domain.EventStreamEnded))

	state, _ := env.liveness.Get(ctx, stream.ID)
	assert.Equal(t, domain.LivenessEnded, state)
}

func TestWebhookEncoderIdleOnEndedStream(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)
	ctx := context.Background()

	require.NoError(t, env.liveness.Set(ctx, stream.ID, domain.LivenessLive))
	_, err := env.svc.StartStreaming(ctx, testShop, stream.ID)
	require.NoError(t, err)
	_, err = env.svc.EndStreaming(ctx, testShop, stream.ID)
	require.NoError(t, err)
	endedAt := *env.streams.get(stream.ID).EndedAt

	env.clock.Advance(time.Minute)
	idle := &mux.Event{Type: mux.EventLiveStreamIdle}
	idle.Data.ID = prepared.IngestSessionID
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, idle))

	got := env.streams.get(stream.ID)
	assert.Equal(t, endedAt, *got.EndedAt, "terminal state stays untouched")
	assert.Equal(t, 1, env.events.countByType(stream.ID, domain.EventStreamEnded), "no duplicate audit entry")
}

func assetEvent(assetID, sessionID, playbackID, createdAt string) *mux.Event {
	evt := &mux.Event{Type: mux.EventAssetStreamComplete}
	evt.Data.ID = assetID
	evt.Data.LiveStreamID = sessionID
	evt.Data.CreatedAt = createdAt
	if playbackID != "" {
		evt.Data.PlaybackIDs = append(evt.Data.PlaybackIDs, mux.PlaybackRef{ID: playbackID})
	}
	return evt
}

func TestWebhookAssetReady(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)
	ctx := context.Background()

	evt := assetEvent("asset-1", prepared.IngestSessionID, "asset-pb", "1748775600")
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, evt))

	got := env.streams.get(stream.ID)
	assert.Equal(t, "asset-1", got.AssetID)
	assert.Equal(t, "asset-pb", got.AssetPlaybackID)
	require.NotNil(t, got.AssetCreatedAt)
	assert.Equal(t, time.Unix(1748775600, 0).UTC(), *got.AssetCreatedAt)
	assert.Equal(t, 1, env.events.countByType(stream.ID, domain.EventAssetReady))
}

func TestWebhookAssetReadyIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)
	ctx := context.Background()

	first := assetEvent("asset-1", prepared.IngestSessionID, "asset-pb", "1748775600")
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, first))

	// Redelivery with different payload details must not overwrite.
	replay := assetEvent("asset-2", prepared.IngestSessionID, "other-pb", "1748779200")
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, replay))

	got := env.streams.get(stream.ID)
	assert.Equal(t, "asset-1", got.AssetID, "first delivery wins")
	assert.Equal(t, "asset-pb", got.AssetPlaybackID)
	assert.Equal(t, 1, env.events.countByType(stream.ID, domain.EventAssetReady), "exactly one audit entry")
}

func TestWebhookAssetReadyGeneratesFeaturedClips(t *testing.T) {
	env := newTestEnv(t, Options{})
	stream := env.mustCreateStream(t)
	prepared := env.mustPrepareSession(t, stream.ID)
	ctx := context.Background()

	require.NoError(t, env.liveness.Set(ctx, stream.ID, domain.LivenessLive))
	_, err := env.svc.StartStreaming(ctx, testShop, stream.ID)
	require.NoError(t, err)

	product, err := env.svc.AddProduct(ctx, testShop, stream.ID, "gid://shopify/Product/9")
	require.NoError(t, err)
	env.clock.Advance(10 * time.Minute)
	_, err = env.svc.FeatureProduct(ctx, testShop, stream.ID, product.ID)
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)
	_, err = env.svc.EndStreaming(ctx, testShop, stream.ID)
	require.NoError(t, err)

	evt := assetEvent("asset-1", prepared.IngestSessionID, "asset-pb", "")
	require.NoError(t, env.svc.HandleWebhookEvent(ctx, evt))

	require.Eventually(t, func() bool {
		clips, err := env.clips.ListByStream(ctx, stream.ID)
		return err == nil && len(clips) == 1
	}, time.Second, 5*time.Millisecond)

	clips, err := env.clips.ListByStream(ctx, stream.ID)
	require.NoError(t, err)
	clip := clips[0]
	assert.Equal(t, "gid://shopify/Product/9", clip.ProductGID)
	// Featured at minute 10 of the broadcast, so the window sits around 600s.
	assert.InDelta(t, 585, clip.StartSeconds, 0.01)
	assert.InDelta(t, 645, clip.EndSeconds, 0.01)
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	env := newTestEnv(t, Options{})

	evt := &mux.Event{Type: "video.live_stream.recording"}
	assert.NoError(t, env.svc.HandleWebhookEvent(context.Background(), evt))
}

func TestParseAssetCreatedAt(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Unix(1748775600, 0).UTC(), parseAssetCreatedAt("1748775600", fallback))
	assert.Equal(t, fallback, parseAssetCreatedAt("", fallback))
	assert.Equal(t, fallback, parseAssetCreatedAt("not-a-number", fallback))
}
