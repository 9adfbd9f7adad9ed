package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

// In-memory fakes implementing the domain interfaces for service tests.

type fakeStreamRepo struct {
	mu      sync.Mutex
	streams map[uuid.UUID]*domain.Stream
}

func newFakeStreamRepo() *fakeStreamRepo {
	return &fakeStreamRepo{streams: make(map[uuid.UUID]*domain.Stream)}
}

func (r *fakeStreamRepo) put(s *domain.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.streams[s.ID] = &copied
}

func (r *fakeStreamRepo) get(id uuid.UUID) *domain.Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.streams[id]; ok {
		copied := *s
		return &copied
	}
	return nil
}

func (r *fakeStreamRepo) Create(_ context.Context, shop string, details domain.StreamDetails) (*domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	s := &domain.Stream{
		ID:          uuid.New(),
		Shop:        shop,
		Title:       details.Title,
		Description: details.Description,
		ScheduledAt: details.ScheduledAt,
		Tags:        details.Tags,
		Status:      domain.StatusDraft,
		LatencyMode: "low",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.streams[s.ID] = s
	copied := *s
	return &copied, nil
}

func (r *fakeStreamRepo) GetByID(_ context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok || s.Shop != shop {
		return nil, domain.ErrStreamNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStreamRepo) ListByShop(_ context.Context, shop string) ([]domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Stream
	for _, s := range r.streams {
		if s.Shop == shop {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStreamRepo) UpdateDetails(_ context.Context, shop string, id uuid.UUID, details domain.StreamDetails) (*domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok || s.Shop != shop {
		return nil, domain.ErrStreamNotFound
	}
	s.Title = details.Title
	s.Description = details.Description
	s.ScheduledAt = details.ScheduledAt
	s.ThumbnailURL = details.ThumbnailURL
	s.Tags = details.Tags
	copied := *s
	return &copied, nil
}

func (r *fakeStreamRepo) MarkScheduled(_ context.Context, shop string, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok || s.Shop != shop || s.Status != domain.StatusDraft {
		return domain.ErrStreamNotFound
	}
	s.Status = domain.StatusScheduled
	s.ScheduledAt = &at
	return nil
}

func (r *fakeStreamRepo) SetIngestSession(_ context.Context, id uuid.UUID, session domain.IngestSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return domain.ErrStreamNotFound
	}
	if s.IngestSessionID != "" {
		return domain.ErrSessionExists
	}
	s.IngestSessionID = session.SessionID
	s.StreamKey = session.StreamKey
	s.IngestURL = session.IngestURL
	s.PlaybackID = session.PlaybackID
	s.LatencyMode = session.LatencyMode
	return nil
}

func (r *fakeStreamRepo) GetByIngestSessionID(_ context.Context, sessionID string) (*domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.streams {
		if s.IngestSessionID == sessionID && sessionID != "" {
			copied := *s
			return &copied, nil
		}
	}
	return nil, domain.ErrUnknownSession
}

func (r *fakeStreamRepo) SetPlaybackID(_ context.Context, id uuid.UUID, playbackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return domain.ErrStreamNotFound
	}
	if s.PlaybackID == "" {
		s.PlaybackID = playbackID
	}
	return nil
}

func (r *fakeStreamRepo) MarkLive(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return domain.ErrStreamNotFound
	}
	s.Status = domain.StatusLive
	s.StartedAt = &at
	s.LiveStartedAt = &at
	return nil
}

func (r *fakeStreamRepo) MarkEnded(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return domain.ErrStreamNotFound
	}
	s.Status = domain.StatusEnded
	s.EndedAt = &at
	return nil
}

func (r *fakeStreamRepo) SetRecordedAsset(_ context.Context, id uuid.UUID, asset domain.RecordedAsset) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return false, domain.ErrStreamNotFound
	}
	if s.AssetID != "" {
		return false, nil
	}
	s.AssetID = asset.AssetID
	s.AssetPlaybackID = asset.PlaybackID
	created := asset.CreatedAt
	s.AssetCreatedAt = &created
	return true, nil
}

func (r *fakeStreamRepo) ClearAgedAssets(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	for _, s := range r.streams {
		if s.AssetID != "" && s.AssetCreatedAt != nil && s.AssetCreatedAt.Before(cutoff) {
			s.AssetID = ""
			s.AssetPlaybackID = ""
			s.AssetCreatedAt = nil
			cleared++
		}
	}
	return cleared, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.StreamProduct
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*domain.StreamProduct)}
}

func (r *fakeProductRepo) lineup(streamID uuid.UUID) []*domain.StreamProduct {
	var out []*domain.StreamProduct
	for _, p := range r.products {
		if p.StreamID == streamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (r *fakeProductRepo) Add(_ context.Context, streamID uuid.UUID, productGID string) (*domain.StreamProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &domain.StreamProduct{
		ID:         uuid.New(),
		StreamID:   streamID,
		ProductGID: productGID,
		Position:   len(r.lineup(streamID)),
		CreatedAt:  time.Now(),
	}
	r.products[p.ID] = p
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) Remove(_ context.Context, streamID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.StreamID != streamID {
		return domain.ErrProductNotFound
	}
	delete(r.products, productID)
	for i, remaining := range r.lineup(streamID) {
		remaining.Position = i
	}
	return nil
}

func (r *fakeProductRepo) Reorder(_ context.Context, streamID uuid.UUID, orderedIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(orderedIDs) != len(r.lineup(streamID)) {
		return fmt.Errorf("%w: reorder must list all products", domain.ErrInvalidInput)
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate product id in reorder", domain.ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}
	for position, id := range orderedIDs {
		p, ok := r.products[id]
		if !ok || p.StreamID != streamID {
			return domain.ErrProductNotFound
		}
		p.Position = position
	}
	return nil
}

func (r *fakeProductRepo) MarkFeatured(_ context.Context, streamID, productID uuid.UUID, at time.Time) (*domain.StreamProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.StreamID != streamID {
		return nil, domain.ErrProductNotFound
	}
	p.FeaturedAt = &at
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) ListByStream(_ context.Context, streamID uuid.UUID) ([]domain.StreamProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StreamProduct
	for _, p := range r.lineup(streamID) {
		out = append(out, *p)
	}
	return out, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.StreamEvent
}

func (r *fakeEventRepo) Append(_ context.Context, streamID uuid.UUID, eventType domain.EventType, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, domain.StreamEvent{
		ID:        uuid.New(),
		StreamID:  streamID,
		Type:      eventType,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeEventRepo) ListByStream(_ context.Context, streamID uuid.UUID) ([]domain.StreamEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StreamEvent
	for _, e := range r.events {
		if e.StreamID == streamID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) countByType(streamID uuid.UUID, eventType domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.StreamID == streamID && e.Type == eventType {
			count++
		}
	}
	return count
}

type fakeClipRepo struct {
	mu    sync.Mutex
	clips []domain.StreamClip
}

func (r *fakeClipRepo) Create(_ context.Context, clip *domain.StreamClip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clip.ID = uuid.New()
	clip.CreatedAt = time.Now()
	r.clips = append(r.clips, *clip)
	return nil
}

func (r *fakeClipRepo) ListByStream(_ context.Context, streamID uuid.UUID) ([]domain.StreamClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StreamClip
	for _, c := range r.clips {
		if c.StreamID == streamID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeLivenessStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]domain.LivenessState
}

func newFakeLivenessStore() *fakeLivenessStore {
	return &fakeLivenessStore{states: make(map[uuid.UUID]domain.LivenessState)}
}

func (s *fakeLivenessStore) Set(_ context.Context, streamID uuid.UUID, state domain.LivenessState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[streamID] = state
	return nil
}

func (s *fakeLivenessStore) Get(_ context.Context, streamID uuid.UUID) (domain.LivenessState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[streamID], nil
}

func (s *fakeLivenessStore) Clear(_ context.Context, streamID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, streamID)
	return nil
}

type fakeVideoPlatform struct {
	mu          sync.Mutex
	created     int
	clipsCut    int
	failCreate  bool
	nextSession string
}

func (v *fakeVideoPlatform) CreateLiveStream(context.Context) (*domain.IngestSession, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failCreate {
		return nil, fmt.Errorf("video platform unavailable")
	}
	v.created++
	sessionID := v.nextSession
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", v.created)
	}
	return &domain.IngestSession{
		SessionID:   sessionID,
		StreamKey:   "sk-" + sessionID,
		IngestURL:   "rtmps://global-live.mux.com:443/app",
		PlaybackID:  "pb-" + sessionID,
		LatencyMode: "low",
	}, nil
}

func (v *fakeVideoPlatform) CreateClip(_ context.Context, assetID string, start, end float64) (*domain.ClipAsset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clipsCut++
	return &domain.ClipAsset{
		AssetID:    fmt.Sprintf("clip-of-%s-%d", assetID, v.clipsCut),
		PlaybackID: fmt.Sprintf("clip-pb-%d", v.clipsCut),
	}, nil
}
