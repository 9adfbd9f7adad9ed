package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ShopStream-LLC/shopstream-app/internal/app"
	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
)

type streamDetailsRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Tags         string     `json:"tags"`
}

func (r *streamDetailsRequest) toDetails() domain.StreamDetails {
	return domain.StreamDetails{
		Title:        r.Title,
		Description:  r.Description,
		ScheduledAt:  r.ScheduledAt,
		ThumbnailURL: r.ThumbnailURL,
		Tags:         r.Tags,
	}
}

type streamResponse struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	ScheduledAt  *time.Time          `json:"scheduledAt,omitempty"`
	ThumbnailURL string              `json:"thumbnailUrl,omitempty"`
	Tags         string              `json:"tags,omitempty"`
	Status       domain.StreamStatus `json:"status"`
	StartedAt    *time.Time          `json:"startedAt,omitempty"`
	EndedAt      *time.Time          `json:"endedAt,omitempty"`
	IngestURL    string              `json:"ingestUrl,omitempty"`
	StreamKey    string              `json:"streamKey,omitempty"`
	PlaybackURL  string              `json:"playbackUrl,omitempty"`
	HasRecording bool                `json:"hasRecording"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toStreamResponse(s *domain.Stream) streamResponse {
	return streamResponse{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		ScheduledAt:  s.ScheduledAt,
		ThumbnailURL: s.ThumbnailURL,
		Tags:         s.Tags,
		Status:       s.Status,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
		IngestURL:    s.IngestURL,
		StreamKey:    s.StreamKey,
		PlaybackURL:  app.PlaybackURL(s),
		HasRecording: s.AssetID != "",
		CreatedAt:    s.CreatedAt,
	}
}

func (s *Server) handleCreateStream(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}

	var req streamDetailsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	stream, err := s.app.CreateStream(c.Request().Context(), shop, req.toDetails())
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(201, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListStreams(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}

	streams, err := s.app.ListStreams(c.Request().Context(), shop)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]streamResponse, 0, len(streams))
	for i := range streams {
		out = append(out, toStreamResponse(&streams[i]))
	}

	if err := c.JSON(200, out); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetStream(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	stream, err := s.app.GetStream(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateStream(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	var req streamDetailsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	stream, err := s.app.UpdateStream(c.Request().Context(), shop, id, req.toDetails())
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleScheduleStream(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		ScheduledAt time.Time `json:"scheduledAt"`
	}
	if err := c.Bind(&req); err != nil || req.ScheduledAt.IsZero() {
		return apperrors.ValidationError("scheduledAt is required")
	}

	if err := s.app.ScheduleStream(c.Request().Context(), shop, id, req.ScheduledAt); err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, map[string]string{"status": "scheduled"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handlePrepareSession(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	stream, err := s.app.PrepareSession(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStartStreaming(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	stream, err := s.app.StartStreaming(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleEndStreaming(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	stream, err := s.app.EndStreaming(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toStreamResponse(stream)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStreamStatus(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	snapshot, err := s.app.StreamStatus(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, snapshot); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListEvents(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	id, err := streamIDParam(c)
	if err != nil {
		return err
	}

	events, err := s.app.ListEvents(c.Request().Context(), shop, id)
	if err != nil {
		return mapDomainError(err)
	}

	type eventResponse struct {
		ID        uuid.UUID        `json:"id"`
		Type      domain.EventType `json:"type"`
		CreatedAt time.Time        `json:"createdAt"`
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{ID: e.ID, Type: e.Type, CreatedAt: e.CreatedAt})
	}

	if err := c.JSON(200, out); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
