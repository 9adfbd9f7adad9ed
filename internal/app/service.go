package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	"github.com/ShopStream-LLC/shopstream-app/internal/metrics"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 5000

	retentionSweepInterval = time.Hour
)

// Options tune the lifecycle policy.
type Options struct {
	// AutoGoLive enables the looser flow: the encoder-active webhook itself
	// transitions the record to LIVE. In the default strict flow only the
	// merchant's explicit start action does, and it requires the encoder to
	// be observed connected first.
	AutoGoLive bool

	// AssetRetention bounds how long recorded-asset linkage is kept before
	// the periodic sweep clears it. Zero disables the sweep.
	AssetRetention time.Duration
}

// Service orchestrates all use cases over the stream record store, the
// liveness cache, the audit log, and the video platform.
type Service struct {
	streams  domain.StreamRepository
	products domain.ProductRepository
	events   domain.EventRepository
	clips    domain.ClipRepository
	liveness domain.LivenessStore
	video    domain.VideoPlatform
	clock    clockwork.Clock
	opts     Options

	// prepareGroup collapses concurrent session provisioning for the same
	// stream into a single video-platform call.
	prepareGroup singleflight.Group

	sweepStopCh chan struct{}
	stopOnce    sync.Once
	sweepWg     sync.WaitGroup
}

func NewService(
	streams domain.StreamRepository,
	products domain.ProductRepository,
	events domain.EventRepository,
	clips domain.ClipRepository,
	liveness domain.LivenessStore,
	video domain.VideoPlatform,
	clock clockwork.Clock,
	opts Options,
) *Service {
	s := &Service{
		streams:     streams,
		products:    products,
		events:      events,
		clips:       clips,
		liveness:    liveness,
		video:       video,
		clock:       clock,
		opts:        opts,
		sweepStopCh: make(chan struct{}),
	}

	if opts.AssetRetention > 0 {
		s.startRetentionSweep()
	}
	return s
}

// Stop terminates background work. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.sweepStopCh) })
	s.sweepWg.Wait()
}

// --- Stream CRUD ---

func validateDetails(details *domain.StreamDetails, now time.Time) error {
	details.Title = strings.TrimSpace(details.Title)
	if details.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(details.Title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", domain.ErrInvalidInput, maxTitleLength)
	}
	if len(details.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, maxDescriptionLength)
	}
	if details.ScheduledAt != nil && !details.ScheduledAt.After(now) {
		return fmt.Errorf("%w: schedule time must be in the future", domain.ErrInvalidInput)
	}
	return nil
}

func (s *Service) CreateStream(ctx context.Context, shop string, details domain.StreamDetails) (*domain.Stream, error) {
	if err := validateDetails(&details, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.streams.Create(ctx, shop, details)
}

func (s *Service) GetStream(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	return s.streams.GetByID(ctx, shop, id)
}

func (s *Service) ListStreams(ctx context.Context, shop string) ([]domain.Stream, error) {
	return s.streams.ListByShop(ctx, shop)
}

func (s *Service) UpdateStream(ctx context.Context, shop string, id uuid.UUID, details domain.StreamDetails) (*domain.Stream, error) {
	if err := validateDetails(&details, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.streams.UpdateDetails(ctx, shop, id, details)
}

func (s *Service) ScheduleStream(ctx context.Context, shop string, id uuid.UUID, at time.Time) error {
	if !at.After(s.clock.Now()) {
		return fmt.Errorf("%w: schedule time must be in the future", domain.ErrInvalidInput)
	}
	return s.streams.MarkScheduled(ctx, shop, id, at)
}

// --- Lifecycle actions ---

// PrepareSession provisions the external ingest session for a stream, or
// returns the existing credentials: one video session per stream, ever.
func (s *Service) PrepareSession(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, shop, id)
	if err != nil {
		return nil, err
	}
	if stream.HasIngestSession() {
		return stream, nil
	}

	_, err, _ = s.prepareGroup.Do(id.String(), func() (any, error) {
		session, err := s.video.CreateLiveStream(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to provision ingest session: %w", err)
		}

		err = s.streams.SetIngestSession(ctx, id, *session)
		if errors.Is(err, domain.ErrSessionExists) {
			// A concurrent caller won the race; the stored session stands.
			slog.Warn("discarding duplicate ingest session", "stream_id", id, "session_id", session.SessionID)
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	return s.streams.GetByID(ctx, shop, id)
}

// StartStreaming transitions DRAFT/SCHEDULED → LIVE on explicit merchant
// action. Going live is a merchant-controlled moment; encoder traffic alone
// never drives it in the strict flow.
func (s *Service) StartStreaming(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, shop, id)
	if err != nil {
		return nil, err
	}

	switch stream.Status {
	case domain.StatusDraft, domain.StatusScheduled:
	default:
		return nil, fmt.Errorf("%w: cannot start from %s", domain.ErrInvalidTransition, stream.Status)
	}

	if !s.opts.AutoGoLive {
		hint, err := s.liveness.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read liveness hint: %w", err)
		}
		if hint != domain.LivenessLive || stream.PlaybackID == "" {
			return nil, domain.ErrEncoderNotReady
		}
	}

	now := s.clock.Now().UTC()
	if err := s.streams.MarkLive(ctx, id, now); err != nil {
		return nil, err
	}
	metrics.StreamTransitionsTotal.WithLabelValues(string(domain.StatusLive), "merchant").Inc()

	if err := s.events.Append(ctx, id, domain.EventStreamStarted, map[string]any{"trigger": "merchant"}); err != nil {
		slog.Error("failed to append stream started event", "stream_id", id, "error", err)
	}

	return s.streams.GetByID(ctx, shop, id)
}

// EndStreaming transitions LIVE → ENDED on explicit merchant action.
func (s *Service) EndStreaming(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, shop, id)
	if err != nil {
		return nil, err
	}
	if stream.Status != domain.StatusLive {
		return nil, fmt.Errorf("%w: cannot end from %s", domain.ErrInvalidTransition, stream.Status)
	}

	now := s.clock.Now().UTC()
	if err := s.streams.MarkEnded(ctx, id, now); err != nil {
		return nil, err
	}
	metrics.StreamTransitionsTotal.WithLabelValues(string(domain.StatusEnded), "merchant").Inc()

	if err := s.events.Append(ctx, id, domain.EventStreamEnded, map[string]any{"trigger": "merchant"}); err != nil {
		slog.Error("failed to append stream ended event", "stream_id", id, "error", err)
	}

	return s.streams.GetByID(ctx, shop, id)
}

// --- Status snapshot ---

// StatusSnapshot is the converged lifecycle view the client polls for.
type StatusSnapshot struct {
	StreamID    uuid.UUID           `json:"streamId"`
	Status      domain.StreamStatus `json:"status"`
	ViewState   domain.ViewState    `json:"viewState"`
	Liveness    domain.LivenessState `json:"liveness"`
	PlaybackURL string              `json:"playbackUrl,omitempty"`
	StartedAt   *time.Time          `json:"startedAt,omitempty"`
	EndedAt     *time.Time          `json:"endedAt,omitempty"`
	Poll        domain.PollGuidance `json:"poll"`
}

// StreamStatus merges the durable record with the advisory liveness hint.
// The hint is read best-effort: a cache failure degrades to "unknown" rather
// than failing the snapshot.
func (s *Service) StreamStatus(ctx context.Context, shop string, id uuid.UUID) (*StatusSnapshot, error) {
	stream, err := s.streams.GetByID(ctx, shop, id)
	if err != nil {
		return nil, err
	}

	hint, err := s.liveness.Get(ctx, id)
	if err != nil {
		slog.Warn("liveness hint unavailable", "stream_id", id, "error", err)
		hint = domain.LivenessUnknown
	}

	view := domain.DesiredViewState(stream, hint)
	return &StatusSnapshot{
		StreamID:    stream.ID,
		Status:      stream.Status,
		ViewState:   view,
		Liveness:    hint,
		PlaybackURL: PlaybackURL(stream),
		StartedAt:   stream.StartedAt,
		EndedAt:     stream.EndedAt,
		Poll:        domain.DesiredPollGuidance(stream, view, s.clock.Now()),
	}, nil
}

// PlaybackURL picks the highest-priority playback source: migrated storage
// first, then the recorded asset, then the live playback id.
func PlaybackURL(stream *domain.Stream) string {
	if stream.MigratedVideoURL != "" {
		return stream.MigratedVideoURL
	}
	if stream.AssetPlaybackID != "" {
		return mux.PlaybackURL(stream.AssetPlaybackID)
	}
	return mux.PlaybackURL(stream.PlaybackID)
}

// --- Product lineup ---

func (s *Service) AddProduct(ctx context.Context, shop string, streamID uuid.UUID, productGID string) (*domain.StreamProduct, error) {
	if strings.TrimSpace(productGID) == "" {
		return nil, fmt.Errorf("%w: product reference is required", domain.ErrInvalidInput)
	}
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return nil, err
	}
	return s.products.Add(ctx, streamID, productGID)
}

func (s *Service) RemoveProduct(ctx context.Context, shop string, streamID, productID uuid.UUID) error {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return err
	}
	return s.products.Remove(ctx, streamID, productID)
}

func (s *Service) ReorderProducts(ctx context.Context, shop string, streamID uuid.UUID, orderedIDs []uuid.UUID) error {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return err
	}
	return s.products.Reorder(ctx, streamID, orderedIDs)
}

func (s *Service) FeatureProduct(ctx context.Context, shop string, streamID, productID uuid.UUID) (*domain.StreamProduct, error) {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return nil, err
	}

	product, err := s.products.MarkFeatured(ctx, streamID, productID, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, streamID, domain.EventProductFeatured, map[string]any{"product_gid": product.ProductGID}); err != nil {
		slog.Error("failed to append product featured event", "stream_id", streamID, "error", err)
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamProduct, error) {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return nil, err
	}
	return s.products.ListByStream(ctx, streamID)
}

// --- Clips ---

// ClipInput are the merchant-supplied clip parameters.
type ClipInput struct {
	ProductGID   string
	StartSeconds float64
	EndSeconds   float64
	Title        string
	Description  string
}

func (s *Service) CreateClip(ctx context.Context, shop string, streamID uuid.UUID, input ClipInput) (*domain.StreamClip, error) {
	if err := domain.ValidateClipWindow(input.StartSeconds, input.EndSeconds); err != nil {
		return nil, err
	}

	stream, err := s.streams.GetByID(ctx, shop, streamID)
	if err != nil {
		return nil, err
	}
	if stream.AssetID == "" {
		return nil, domain.ErrNoRecording
	}

	asset, err := s.video.CreateClip(ctx, stream.AssetID, input.StartSeconds, input.EndSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to create clip asset: %w", err)
	}

	clip := &domain.StreamClip{
		StreamID:       streamID,
		ProductGID:     input.ProductGID,
		ClipAssetID:    asset.AssetID,
		ClipPlaybackID: asset.PlaybackID,
		StartSeconds:   input.StartSeconds,
		EndSeconds:     input.EndSeconds,
		Title:          input.Title,
		Description:    input.Description,
	}
	if err := s.clips.Create(ctx, clip); err != nil {
		return nil, err
	}
	return clip, nil
}

func (s *Service) ListClips(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamClip, error) {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return nil, err
	}
	return s.clips.ListByStream(ctx, streamID)
}

func (s *Service) ListEvents(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamEvent, error) {
	if _, err := s.streams.GetByID(ctx, shop, streamID); err != nil {
		return nil, err
	}
	return s.events.ListByStream(ctx, streamID)
}

// --- Recording retention ---

func (s *Service) startRetentionSweep() {
	s.sweepWg.Add(1)
	go func() {
		defer s.sweepWg.Done()
		ticker := s.clock.NewTicker(retentionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				s.sweepAgedAssets()
			case <-s.sweepStopCh:
				return
			}
		}
	}()
}

func (s *Service) sweepAgedAssets() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := s.clock.Now().Add(-s.opts.AssetRetention)
	cleared, err := s.streams.ClearAgedAssets(ctx, cutoff)
	if err != nil {
		slog.Error("asset retention sweep failed", "error", err)
		return
	}
	if cleared > 0 {
		slog.Info("aged out recordings", "count", cleared, "cutoff", cutoff)
	}
}
