package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	"github.com/ShopStream-LLC/shopstream-app/internal/metrics"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

// Auto-clip window around a featured-product moment.
const (
	autoClipLead    = 15 * time.Second
	autoClipTrail   = 45 * time.Second
	autoClipTimeout = 30 * time.Second
)

// HandleWebhookEvent reconciles one verified platform event against the
// liveness cache and the stream record. Events whose session id resolves to
// no stream return domain.ErrUnknownSession and mutate nothing; retrying is
// the platform's responsibility, not ours.
//
// The independent side effects of an event (cache write, record update,
// audit-log append) target different resources and are issued concurrently.
// There is no distributed transaction across them: the cache is rederivable
// and the record converges on the next event.
func (s *Service) HandleWebhookEvent(ctx context.Context, evt *mux.Event) error {
	switch evt.Type {
	case mux.EventLiveStreamActive:
		return s.handleEncoderActive(ctx, evt)
	case mux.EventLiveStreamIdle:
		return s.handleEncoderIdle(ctx, evt)
	case mux.EventAssetStreamComplete:
		return s.handleAssetReady(ctx, evt)
	default:
		// Forward-compatible no-op.
		slog.Info("ignoring webhook event", "type", evt.Type)
		return nil
	}
}

// handleEncoderActive flips the liveness hint to "live". The hint alone never
// transitions the durable status: going live stays a merchant decision unless
// the looser auto-go-live flow is enabled.
func (s *Service) handleEncoderActive(ctx context.Context, evt *mux.Event) error {
	stream, err := s.streams.GetByIngestSessionID(ctx, evt.SessionID())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.liveness.Set(gctx, stream.ID, domain.LivenessLive)
	})

	if playbackID := evt.PlaybackID(); playbackID != "" && stream.PlaybackID == "" {
		g.Go(func() error {
			return s.streams.SetPlaybackID(gctx, stream.ID, playbackID)
		})
	}

	if s.opts.AutoGoLive && stream.Status != domain.StatusLive && !stream.IsTerminal() {
		now := s.clock.Now().UTC()
		g.Go(func() error {
			if err := s.streams.MarkLive(gctx, stream.ID, now); err != nil {
				return err
			}
			metrics.StreamTransitionsTotal.WithLabelValues(string(domain.StatusLive), "webhook").Inc()
			return nil
		})
		g.Go(func() error {
			return s.events.Append(gctx, stream.ID, domain.EventStreamStarted, map[string]any{"trigger": "webhook"})
		})
	}

	return g.Wait()
}

// handleEncoderIdle drives the terminal transition directly: an idle encoder
// means nothing useful is happening regardless of merchant intent. The
// platform already waited out transient reconnects before emitting it.
func (s *Service) handleEncoderIdle(ctx context.Context, evt *mux.Event) error {
	stream, err := s.streams.GetByIngestSessionID(ctx, evt.SessionID())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.liveness.Set(gctx, stream.ID, domain.LivenessEnded)
	})

	if !stream.IsTerminal() {
		now := s.clock.Now().UTC()
		g.Go(func() error {
			if err := s.streams.MarkEnded(gctx, stream.ID, now); err != nil {
				return err
			}
			metrics.StreamTransitionsTotal.WithLabelValues(string(domain.StatusEnded), "webhook").Inc()
			return nil
		})
		g.Go(func() error {
			return s.events.Append(gctx, stream.ID, domain.EventStreamEnded, map[string]any{"trigger": "webhook"})
		})
	}

	return g.Wait()
}

// handleAssetReady persists the recording linkage once; replays are a no-op.
func (s *Service) handleAssetReady(ctx context.Context, evt *mux.Event) error {
	stream, err := s.streams.GetByIngestSessionID(ctx, evt.SessionID())
	if err != nil {
		return err
	}

	asset := domain.RecordedAsset{
		AssetID:    evt.Data.ID,
		PlaybackID: evt.PlaybackID(),
		CreatedAt:  parseAssetCreatedAt(evt.Data.CreatedAt, s.clock.Now()),
	}

	applied, err := s.streams.SetRecordedAsset(ctx, stream.ID, asset)
	if err != nil {
		return err
	}
	if !applied {
		slog.Info("recorded asset already stored, skipping", "stream_id", stream.ID, "asset_id", asset.AssetID)
		return nil
	}

	if err := s.events.Append(ctx, stream.ID, domain.EventAssetReady, map[string]any{"asset_id": asset.AssetID}); err != nil {
		slog.Error("failed to append asset ready event", "stream_id", stream.ID, "error", err)
	}

	// Best-effort, non-blocking: clip generation failures never fail the
	// webhook response.
	go s.generateFeaturedClips(stream, asset)

	return nil
}

// parseAssetCreatedAt accepts the provider's epoch-seconds string and falls
// back to the current time.
func parseAssetCreatedAt(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback.UTC()
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback.UTC()
	}
	return time.Unix(epoch, 0).UTC()
}

// generateFeaturedClips cuts a clip around each featured-product moment of
// the recording.
func (s *Service) generateFeaturedClips(stream *domain.Stream, asset domain.RecordedAsset) {
	if stream.LiveStartedAt == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), autoClipTimeout)
	defer cancel()

	products, err := s.products.ListByStream(ctx, stream.ID)
	if err != nil {
		slog.Error("auto-clip: failed to list lineup", "stream_id", stream.ID, "error", err)
		return
	}

	for _, product := range products {
		if product.FeaturedAt == nil {
			continue
		}

		offset := product.FeaturedAt.Sub(*stream.LiveStartedAt)
		start := (offset - autoClipLead).Seconds()
		if start < 0 {
			start = 0
		}
		end := (offset + autoClipTrail).Seconds()

		clipAsset, err := s.video.CreateClip(ctx, asset.AssetID, start, end)
		if err != nil {
			slog.Error("auto-clip: failed to create clip asset", "stream_id", stream.ID, "product_gid", product.ProductGID, "error", err)
			continue
		}

		clip := &domain.StreamClip{
			StreamID:       stream.ID,
			ProductGID:     product.ProductGID,
			ClipAssetID:    clipAsset.AssetID,
			ClipPlaybackID: clipAsset.PlaybackID,
			StartSeconds:   start,
			EndSeconds:     end,
			Title:          "Featured product highlight",
		}
		if err := s.clips.Create(ctx, clip); err != nil {
			slog.Error("auto-clip: failed to store clip", "stream_id", stream.ID, "error", err)
		}
	}
}
