package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

// ClipRepo implements domain.ClipRepository backed by PostgreSQL.
type ClipRepo struct {
	pool *pgxpool.Pool
}

func NewClipRepo(pool *pgxpool.Pool) *ClipRepo {
	return &ClipRepo{pool: pool}
}

func (r *ClipRepo) Create(ctx context.Context, clip *domain.StreamClip) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO stream_clips (stream_id, product_gid, clip_asset_id, clip_playback_id, start_seconds, end_seconds, title, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, clip.StreamID, clip.ProductGID, clip.ClipAssetID, clip.ClipPlaybackID,
		clip.StartSeconds, clip.EndSeconds, clip.Title, clip.Description,
	).Scan(&clip.ID, &clip.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create clip: %w", err)
	}
	return nil
}

func (r *ClipRepo) ListByStream(ctx context.Context, streamID uuid.UUID) ([]domain.StreamClip, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, stream_id, product_gid, clip_asset_id, clip_playback_id, start_seconds, end_seconds, title, description, created_at
		FROM stream_clips
		WHERE stream_id = $1
		ORDER BY created_at
	`, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	var clips []domain.StreamClip
	for rows.Next() {
		var c domain.StreamClip
		if err := rows.Scan(&c.ID, &c.StreamID, &c.ProductGID, &c.ClipAssetID, &c.ClipPlaybackID,
			&c.StartSeconds, &c.EndSeconds, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}
