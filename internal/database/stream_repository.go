package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

// streamColumns must match the Scan order in scanStream.
const streamColumns = `id, shop, title, description, scheduled_at, thumbnail_url, tags,
	status, started_at, live_started_at, ended_at,
	COALESCE(ingest_session_id, ''), stream_key, ingest_url, playback_id, latency_mode,
	asset_id, asset_playback_id, asset_created_at, migrated_video_url,
	created_at, updated_at`

// StreamRepo implements domain.StreamRepository backed by PostgreSQL.
type StreamRepo struct {
	pool *pgxpool.Pool
}

func NewStreamRepo(pool *pgxpool.Pool) *StreamRepo {
	return &StreamRepo{pool: pool}
}

func scanStream(row pgx.Row) (*domain.Stream, error) {
	var s domain.Stream
	err := row.Scan(
		&s.ID, &s.Shop, &s.Title, &s.Description, &s.ScheduledAt, &s.ThumbnailURL, &s.Tags,
		&s.Status, &s.StartedAt, &s.LiveStartedAt, &s.EndedAt,
		&s.IngestSessionID, &s.StreamKey, &s.IngestURL, &s.PlaybackID, &s.LatencyMode,
		&s.AssetID, &s.AssetPlaybackID, &s.AssetCreatedAt, &s.MigratedVideoURL,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stream: %w", err)
	}
	return &s, nil
}

func (r *StreamRepo) Create(ctx context.Context, shop string, details domain.StreamDetails) (*domain.Stream, error) {
	return scanStream(r.pool.QueryRow(ctx, `
		INSERT INTO streams (shop, title, description, scheduled_at, thumbnail_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+streamColumns+`
	`, shop, details.Title, details.Description, details.ScheduledAt, details.ThumbnailURL, details.Tags))
}

func (r *StreamRepo) GetByID(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error) {
	return scanStream(r.pool.QueryRow(ctx,
		`SELECT `+streamColumns+` FROM streams WHERE id = $1 AND shop = $2`, id, shop))
}

func (r *StreamRepo) ListByShop(ctx context.Context, shop string) ([]domain.Stream, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+streamColumns+` FROM streams WHERE shop = $1 ORDER BY created_at DESC`, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	defer rows.Close()

	var streams []domain.Stream
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, *s)
	}
	return streams, rows.Err()
}

func (r *StreamRepo) UpdateDetails(ctx context.Context, shop string, id uuid.UUID, details domain.StreamDetails) (*domain.Stream, error) {
	return scanStream(r.pool.QueryRow(ctx, `
		UPDATE streams
		SET title = $1, description = $2, scheduled_at = $3, thumbnail_url = $4, tags = $5, updated_at = NOW()
		WHERE id = $6 AND shop = $7
		RETURNING `+streamColumns+`
	`, details.Title, details.Description, details.ScheduledAt, details.ThumbnailURL, details.Tags, id, shop))
}

func (r *StreamRepo) MarkScheduled(ctx context.Context, shop string, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET status = $1, scheduled_at = $2, updated_at = NOW()
		WHERE id = $3 AND shop = $4 AND status = $5
	`, domain.StatusScheduled, at, id, shop, domain.StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to mark stream scheduled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStreamNotFound
	}
	return nil
}

// SetIngestSession writes the external session linkage exactly once. The
// WHERE clause enforces immutability at the database, not just in code.
func (r *StreamRepo) SetIngestSession(ctx context.Context, id uuid.UUID, session domain.IngestSession) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET ingest_session_id = $1, stream_key = $2, ingest_url = $3, playback_id = $4, latency_mode = $5, updated_at = NOW()
		WHERE id = $6 AND ingest_session_id IS NULL
	`, session.SessionID, session.StreamKey, session.IngestURL, session.PlaybackID, session.LatencyMode, id)
	if err != nil {
		return fmt.Errorf("failed to set ingest session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the stream does not exist or a session is already linked.
		var existing string
		err := r.pool.QueryRow(ctx,
			`SELECT COALESCE(ingest_session_id, '') FROM streams WHERE id = $1`, id).Scan(&existing)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStreamNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check ingest session: %w", err)
		}
		return domain.ErrSessionExists
	}
	return nil
}

func (r *StreamRepo) GetByIngestSessionID(ctx context.Context, sessionID string) (*domain.Stream, error) {
	stream, err := scanStream(r.pool.QueryRow(ctx,
		`SELECT `+streamColumns+` FROM streams WHERE ingest_session_id = $1`, sessionID))
	if errors.Is(err, domain.ErrStreamNotFound) {
		return nil, domain.ErrUnknownSession
	}
	return stream, err
}

func (r *StreamRepo) SetPlaybackID(ctx context.Context, id uuid.UUID, playbackID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET playback_id = $1, updated_at = NOW()
		WHERE id = $2 AND playback_id = ''
	`, playbackID, id)
	if err != nil {
		return fmt.Errorf("failed to set playback id: %w", err)
	}
	return nil
}

func (r *StreamRepo) MarkLive(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET status = $1, started_at = $2, live_started_at = $2, updated_at = NOW()
		WHERE id = $3
	`, domain.StatusLive, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark stream live: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStreamNotFound
	}
	return nil
}

func (r *StreamRepo) MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET status = $1, ended_at = $2, updated_at = NOW()
		WHERE id = $3
	`, domain.StatusEnded, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark stream ended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStreamNotFound
	}
	return nil
}

// SetRecordedAsset persists the recording linkage once. Replayed asset-ready
// events find asset_id already set and change nothing.
func (r *StreamRepo) SetRecordedAsset(ctx context.Context, id uuid.UUID, asset domain.RecordedAsset) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET asset_id = $1, asset_playback_id = $2, asset_created_at = $3, updated_at = NOW()
		WHERE id = $4 AND asset_id = ''
	`, asset.AssetID, asset.PlaybackID, asset.CreatedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to set recorded asset: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *StreamRepo) ClearAgedAssets(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE streams
		SET asset_id = '', asset_playback_id = '', asset_created_at = NULL, updated_at = NOW()
		WHERE asset_id <> '' AND asset_created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clear aged assets: %w", err)
	}
	return tag.RowsAffected(), nil
}
