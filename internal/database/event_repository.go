package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

// EventRepo implements domain.EventRepository. The audit log is append-only;
// this type issues INSERT and SELECT statements and nothing else.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Append(ctx context.Context, streamID uuid.UUID, eventType domain.EventType, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO stream_events (stream_id, type, payload)
		VALUES ($1, $2, $3)
	`, streamID, eventType, encoded)
	if err != nil {
		return fmt.Errorf("failed to append stream event: %w", err)
	}
	return nil
}

func (r *EventRepo) ListByStream(ctx context.Context, streamID uuid.UUID) ([]domain.StreamEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, stream_id, type, payload, created_at
		FROM stream_events
		WHERE stream_id = $1
		ORDER BY created_at
	`, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stream events: %w", err)
	}
	defer rows.Close()

	var events []domain.StreamEvent
	for rows.Next() {
		var e domain.StreamEvent
		if err := rows.Scan(&e.ID, &e.StreamID, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stream event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
