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

const productColumns = `id, stream_id, product_gid, position, featured_at, created_at`

// ProductRepo implements domain.ProductRepository backed by PostgreSQL.
// Mutations that touch positions run in a transaction so the lineup is always
// a contiguous 0..N-1 sequence.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func scanProduct(row pgx.Row) (*domain.StreamProduct, error) {
	var p domain.StreamProduct
	err := row.Scan(&p.ID, &p.StreamID, &p.ProductGID, &p.Position, &p.FeaturedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stream product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) Add(ctx context.Context, streamID uuid.UUID, productGID string) (*domain.StreamProduct, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO stream_products (stream_id, product_gid, position)
		VALUES ($1, $2, (SELECT COUNT(*) FROM stream_products WHERE stream_id = $1))
		RETURNING `+productColumns+`
	`, streamID, productGID))
}

func (r *ProductRepo) Remove(ctx context.Context, streamID, productID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx,
		`DELETE FROM stream_products WHERE id = $1 AND stream_id = $2`, productID, streamID)
	if err != nil {
		return fmt.Errorf("failed to remove product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	// Reindex the remaining lineup to a dense zero-based sequence.
	_, err = tx.Exec(ctx, `
		UPDATE stream_products sp
		SET position = ranked.new_position
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position) - 1 AS new_position
			FROM stream_products
			WHERE stream_id = $1
		) ranked
		WHERE sp.id = ranked.id
	`, streamID)
	if err != nil {
		return fmt.Errorf("failed to reindex lineup: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ProductRepo) Reorder(ctx context.Context, streamID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM stream_products WHERE stream_id = $1`, streamID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count lineup: %w", err)
	}
	if count != len(orderedIDs) {
		return fmt.Errorf("%w: reorder must list all %d products, got %d", domain.ErrInvalidInput, count, len(orderedIDs))
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate product id %s in reorder", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	for position, id := range orderedIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE stream_products SET position = $1
			WHERE id = $2 AND stream_id = $3
		`, position, id, streamID)
		if err != nil {
			return fmt.Errorf("failed to reorder product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrProductNotFound
		}
	}

	return tx.Commit(ctx)
}

func (r *ProductRepo) MarkFeatured(ctx context.Context, streamID, productID uuid.UUID, at time.Time) (*domain.StreamProduct, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		UPDATE stream_products
		SET featured_at = $1
		WHERE id = $2 AND stream_id = $3
		RETURNING `+productColumns+`
	`, at, productID, streamID))
}

func (r *ProductRepo) ListByStream(ctx context.Context, streamID uuid.UUID) ([]domain.StreamProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM stream_products WHERE stream_id = $1 ORDER BY position`, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineup: %w", err)
	}
	defer rows.Close()

	var products []domain.StreamProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
